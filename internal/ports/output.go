package ports

import "purl2src/internal/types"

// OutputPort serializes result records for the caller. The core never
// assumes a particular format; the CLI picks an adapter.
type OutputPort interface {
	Write(results []types.ResolutionResult) error
}
