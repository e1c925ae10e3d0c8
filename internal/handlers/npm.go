package handlers

import (
	"context"
	"fmt"
	"net/url"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const npmRegistryBase = "https://registry.npmjs.org"

type NpmHandler struct {
	HTTP    ports.HTTPPort
	BaseURL string
}

func NewNpmHandler(http ports.HTTPPort, baseURL string) NpmHandler {
	return NpmHandler{HTTP: http, BaseURL: baseOr(baseURL, npmRegistryBase)}
}

func (h NpmHandler) Ecosystem() types.Ecosystem { return types.EcosystemNpm }

// BuildDownloadURL constructs the registry tarball path. Scoped
// packages keep the literal @scope/name form in the path; only the
// trailing file name uses the bare package name.
func (h NpmHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/%s/-/%s-%s.tgz", h.BaseURL, h.fullName(purl), purl.Name, purl.Version), nil
}

func (h NpmHandler) QueryAPI(ctx context.Context, purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	var doc struct {
		Versions map[string]struct {
			Dist struct {
				Tarball string `json:"tarball"`
			} `json:"dist"`
		} `json:"versions"`
	}
	// The whole package document lives at a single path segment, so a
	// scoped name is percent-encoded here, unlike in the tarball path.
	endpoint := fmt.Sprintf("%s/%s", h.BaseURL, url.PathEscape(h.fullName(purl)))
	if err := h.HTTP.GetJSON(ctx, endpoint, &doc); err != nil {
		return "", nil
	}
	entry, ok := doc.Versions[purl.Version]
	if !ok {
		return "", nil
	}
	return entry.Dist.Tarball, nil
}

func (h NpmHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Version == "" {
		return nil
	}
	return []string{"npm", "view", fmt.Sprintf("%s@%s", h.fullName(purl), purl.Version), "dist.tarball"}
}

func (h NpmHandler) PackageManagers() []string { return []string{"npm"} }

func (h NpmHandler) ParseFallbackOutput(output string) string {
	return firstURLLine(output)
}

func (h NpmHandler) SupportsLatest() bool { return false }

func (h NpmHandler) fullName(purl types.Purl) string {
	if purl.Namespace == "" {
		return purl.Name
	}
	return purl.Namespace + "/" + purl.Name
}

var _ ports.Handler = NpmHandler{}
