package ports

import "purl2src/internal/types"

// HandlerRegistry resolves an ecosystem tag to its handler. The
// registry is built once at startup; implementations must be safe for
// concurrent lookups.
type HandlerRegistry interface {
	Handler(eco types.Ecosystem) (Handler, bool)
	Ecosystems() []types.Ecosystem
}
