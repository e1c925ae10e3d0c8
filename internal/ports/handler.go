package ports

import (
	"context"

	"purl2src/internal/types"
)

// Handler is the per-ecosystem capability set. Implementations must be
// safe for concurrent use; they hold no per-resolution state.
type Handler interface {
	Ecosystem() types.Ecosystem

	// BuildDownloadURL constructs a candidate URL purely from the
	// identifier, without network access. It returns "" when the
	// ecosystem's registry layout is not predictable from the
	// identifier alone, and an error only for handler-level problems
	// (e.g. a required qualifier is missing); the engine absorbs such
	// errors and falls through to the next level.
	BuildDownloadURL(purl types.Purl) (string, error)

	// QueryAPI looks the download URL up via the ecosystem's registry
	// API. Network errors, 404s, and malformed responses yield "",
	// never an engine-visible failure.
	QueryAPI(ctx context.Context, purl types.Purl) (string, error)

	// FallbackCommand returns the package-manager command as an
	// argument vector, or nil when no fallback exists for the
	// identifier. Arguments are literal data; nothing is ever passed
	// through a shell.
	FallbackCommand(purl types.Purl) []string

	// PackageManagers lists the binaries (in preference order) whose
	// presence makes the fallback executable.
	PackageManagers() []string

	// ParseFallbackOutput extracts a download URL from the fallback
	// command's stdout, or returns "" when the tool's output carries
	// no URL.
	ParseFallbackOutput(output string) string

	// SupportsLatest reports whether a versionless identifier can be
	// resolved to the latest release through this handler's API.
	SupportsLatest() bool
}
