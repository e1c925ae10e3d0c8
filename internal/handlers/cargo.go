package handlers

import (
	"context"
	"fmt"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const cratesBase = "https://crates.io/api/v1/crates"

// CargoHandler resolves crates. The crates.io download endpoint is
// fully predictable, so there is no separate API level.
type CargoHandler struct {
	BaseURL string
}

func NewCargoHandler(baseURL string) CargoHandler {
	return CargoHandler{BaseURL: baseOr(baseURL, cratesBase)}
}

func (h CargoHandler) Ecosystem() types.Ecosystem { return types.EcosystemCargo }

func (h CargoHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/%s/%s/download", h.BaseURL, purl.Name, purl.Version), nil
}

func (h CargoHandler) QueryAPI(context.Context, types.Purl) (string, error) {
	return "", nil
}

// FallbackCommand is advisory: cargo has no subcommand that prints a
// crate download URL, so the search output is surfaced for the
// operator and never parsed.
func (h CargoHandler) FallbackCommand(purl types.Purl) []string {
	return []string{"cargo", "search", purl.Name, "--limit", "1"}
}

func (h CargoHandler) PackageManagers() []string { return []string{"cargo"} }

func (h CargoHandler) ParseFallbackOutput(string) string { return "" }

func (h CargoHandler) SupportsLatest() bool { return false }

var _ ports.Handler = CargoHandler{}
