package handlers

import (
	"context"
	"fmt"
	"strings"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const nugetFlatBase = "https://api.nuget.org/v3-flatcontainer"

// NugetHandler resolves against the flat-container convention, which
// lowercases both id and version in every path segment.
type NugetHandler struct {
	BaseURL string
}

func NewNugetHandler(baseURL string) NugetHandler {
	return NugetHandler{BaseURL: baseOr(baseURL, nugetFlatBase)}
}

func (h NugetHandler) Ecosystem() types.Ecosystem { return types.EcosystemNuGet }

func (h NugetHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	id := strings.ToLower(purl.Name)
	version := strings.ToLower(purl.Version)
	return fmt.Sprintf("%s/%s/%s/%s.%s.nupkg", h.BaseURL, id, version, id, version), nil
}

func (h NugetHandler) QueryAPI(context.Context, types.Purl) (string, error) {
	return "", nil
}

// FallbackCommand lists configured feeds so the operator can retry
// against a private source; it carries no URL to parse.
func (h NugetHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Version == "" {
		return nil
	}
	return []string{"dotnet", "nuget", "list", "source"}
}

func (h NugetHandler) PackageManagers() []string { return []string{"nuget", "dotnet"} }

func (h NugetHandler) ParseFallbackOutput(string) string { return "" }

func (h NugetHandler) SupportsLatest() bool { return false }

var _ ports.Handler = NugetHandler{}
