package ports

import (
	"context"
	"errors"
)

// ErrNotFound signals a definitive 404 from a registry API, as opposed
// to a transport failure. Handlers use the distinction to decide
// between "package does not exist" and "registry unreachable".
var ErrNotFound = errors.New("resource not found")

// HTTPPort is the outbound HTTP capability handlers depend on.
type HTTPPort interface {
	// GetJSON performs a GET request and decodes the JSON response
	// body into out. A 404 response is reported as ErrNotFound.
	GetJSON(ctx context.Context, url string, out any) error
}
