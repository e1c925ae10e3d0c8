package ports

import "context"

// ExecutorPort runs package-manager fallback commands. Commands are
// argument vectors executed without shell interpretation, under a hard
// wall-clock timeout.
type ExecutorPort interface {
	// IsAvailable reports whether the binary is present on the search
	// path. No version check is performed.
	IsAvailable(binary string) bool

	// Run executes argv and returns captured stdout. Non-zero exit,
	// timeout, and spawn failures are returned as errors; callers
	// convert them to "no URL" rather than propagating.
	Run(ctx context.Context, argv []string) (string, error)
}
