package handlers

import (
	"context"
	"fmt"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const githubAPIBase = "https://api.github.com"

type GithubHandler struct {
	HTTP    ports.HTTPPort
	BaseURL string
}

func NewGithubHandler(http ports.HTTPPort, baseURL string) GithubHandler {
	return GithubHandler{HTTP: http, BaseURL: baseOr(baseURL, githubAPIBase)}
}

func (h GithubHandler) Ecosystem() types.Ecosystem { return types.EcosystemGitHub }

// BuildDownloadURL points at the clone URL, or at the raw file when a
// subpath singles out one file inside the repository.
func (h GithubHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Namespace == "" {
		return "", nil
	}
	if purl.Subpath != "" {
		ref := purl.Version
		if ref == "" {
			ref = "main"
		}
		return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", purl.Namespace, purl.Name, ref, purl.Subpath), nil
	}
	return fmt.Sprintf("https://github.com/%s/%s.git", purl.Namespace, purl.Name), nil
}

// QueryAPI upgrades a pinned version to a release tarball. Branch
// heads and missing releases fall back to the tag archive URL, which
// GitHub serves for any tag without an API round trip.
func (h GithubHandler) QueryAPI(ctx context.Context, purl types.Purl) (string, error) {
	if purl.Namespace == "" || purl.Version == "" {
		return "", nil
	}
	archive := fmt.Sprintf("https://github.com/%s/%s/archive/refs/tags/%s.tar.gz", purl.Namespace, purl.Name, purl.Version)
	if purl.Version == "main" || purl.Version == "master" {
		return archive, nil
	}
	var release struct {
		TarballURL string `json:"tarball_url"`
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", h.BaseURL, purl.Namespace, purl.Name, purl.Version)
	if err := h.HTTP.GetJSON(ctx, endpoint, &release); err != nil {
		return archive, nil
	}
	if release.TarballURL == "" {
		return archive, nil
	}
	return release.TarballURL, nil
}

func (h GithubHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Namespace == "" {
		return nil
	}
	cloneURL := fmt.Sprintf("https://github.com/%s/%s.git", purl.Namespace, purl.Name)
	if purl.Version == "" {
		return []string{"git", "clone", cloneURL}
	}
	return []string{"git", "clone", "--branch", purl.Version, "--depth", "1", cloneURL}
}

func (h GithubHandler) PackageManagers() []string { return []string{"git"} }

// git clone reports progress, not a download URL.
func (h GithubHandler) ParseFallbackOutput(string) string { return "" }

func (h GithubHandler) SupportsLatest() bool { return false }

var _ ports.Handler = GithubHandler{}
