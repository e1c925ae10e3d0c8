package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const (
	gemDownloadBase = "https://rubygems.org/downloads"
	gemAPIBase      = "https://rubygems.org/api/v2/rubygems"
)

type GemHandler struct {
	HTTP    ports.HTTPPort
	BaseURL string
}

func NewGemHandler(http ports.HTTPPort, baseURL string) GemHandler {
	return GemHandler{HTTP: http, BaseURL: baseOr(baseURL, gemDownloadBase)}
}

func (h GemHandler) Ecosystem() types.Ecosystem { return types.EcosystemGem }

func (h GemHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/%s-%s.gem", h.BaseURL, purl.Name, purl.Version), nil
}

// QueryAPI asks the v2 version endpoint. gem_uri is authoritative;
// failing that, a repository URL is acceptable as a source location,
// but only source_code_uri is trusted as-is. A homepage is too often
// a marketing page, so it only counts when it is a github.com repo.
func (h GemHandler) QueryAPI(ctx context.Context, purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	var doc struct {
		GemURI        string `json:"gem_uri"`
		SourceCodeURI string `json:"source_code_uri"`
		HomepageURI   string `json:"homepage_uri"`
	}
	endpoint := fmt.Sprintf("%s/%s/versions/%s.json", gemAPIBase, purl.Name, purl.Version)
	if err := h.HTTP.GetJSON(ctx, endpoint, &doc); err != nil {
		return "", nil
	}
	if doc.GemURI != "" {
		return doc.GemURI, nil
	}
	if doc.SourceCodeURI != "" {
		if isGitHubRepo(doc.SourceCodeURI) {
			return withGitSuffix(doc.SourceCodeURI), nil
		}
		return doc.SourceCodeURI, nil
	}
	if isGitHubRepo(doc.HomepageURI) {
		return withGitSuffix(doc.HomepageURI), nil
	}
	return "", nil
}

// isGitHubRepo requires the host to be exactly github.com; a
// github.com substring elsewhere in the URL does not qualify.
func isGitHubRepo(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host == "github.com"
}

func withGitSuffix(raw string) string {
	if strings.HasSuffix(raw, ".git") {
		return raw
	}
	return raw + ".git"
}

func (h GemHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Version == "" {
		return nil
	}
	return []string{"gem", "fetch", purl.Name, "--version", purl.Version}
}

func (h GemHandler) PackageManagers() []string { return []string{"gem"} }

// gem fetch writes the file without printing its origin URL.
func (h GemHandler) ParseFallbackOutput(string) string { return "" }

func (h GemHandler) SupportsLatest() bool { return false }

var _ ports.Handler = GemHandler{}
