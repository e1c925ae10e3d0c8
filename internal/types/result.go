package types

// ResolutionError is the structured error carried by a failed result.
type ResolutionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ResolutionResult is the terminal output of the engine for a single
// PURL. It is assembled incrementally while the resolution levels run
// and is immutable once returned.
type ResolutionResult struct {
	Purl              string           `json:"purl"`
	DownloadURL       string           `json:"download_url,omitempty"`
	Validated         Validation       `json:"validated"`
	Method            Method           `json:"method,omitempty"`
	FallbackCommand   string           `json:"fallback_command,omitempty"`
	FallbackAvailable bool             `json:"fallback_available"`
	Status            Status           `json:"status"`
	Err               *ResolutionError `json:"error,omitempty"`
}

// Succeeded reports whether the resolution produced a download URL.
func (r ResolutionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
