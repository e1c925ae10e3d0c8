package ports

import "context"

// ValidatorPort confirms a candidate URL is live and, when a checksum
// is supplied, that the artifact content matches it.
type ValidatorPort interface {
	// Validate returns nil when the URL is reachable (and the
	// checksum, if any, matches). checksum is "algo:hex" or a bare
	// sha256 hex digest; pass "" to skip the content check.
	Validate(ctx context.Context, url string, checksum string) error
}
