package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const (
	pypiAPIBase = "https://pypi.org/pypi"
	// Legacy source-distribution layout. Many projects predate the
	// CDN move and still resolve here, but it is not authoritative,
	// so it only serves as a fill-in when the JSON API is down.
	pypiLegacyBase = "https://pypi.python.org/packages/source"
)

type PypiHandler struct {
	HTTP    ports.HTTPPort
	BaseURL string
}

func NewPypiHandler(http ports.HTTPPort, baseURL string) PypiHandler {
	return PypiHandler{HTTP: http, BaseURL: baseOr(baseURL, pypiAPIBase)}
}

func (h PypiHandler) Ecosystem() types.Ecosystem { return types.EcosystemPyPI }

// BuildDownloadURL yields nothing: the predictable pypi.python.org
// layout stopped being reliable when PyPI moved to hashed CDN paths,
// so resolution goes straight to the JSON API.
func (h PypiHandler) BuildDownloadURL(types.Purl) (string, error) {
	return "", nil
}

type pypiFile struct {
	PackageType string `json:"packagetype"`
	URL         string `json:"url"`
}

func (h PypiHandler) QueryAPI(ctx context.Context, purl types.Purl) (string, error) {
	var doc struct {
		Releases map[string][]pypiFile `json:"releases"`
		Urls     []pypiFile            `json:"urls"`
	}
	endpoint := fmt.Sprintf("%s/%s/json", h.BaseURL, purl.Name)
	if err := h.HTTP.GetJSON(ctx, endpoint, &doc); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", nil
		}
		// API unreachable, not a miss. The legacy layout is a stale
		// guess but better than nothing when a version is pinned.
		return h.legacyURL(purl), nil
	}
	if purl.Version == "" {
		if url := pickSourceFile(doc.Urls); url != "" {
			return url, nil
		}
		return pickLatestRelease(doc.Releases), nil
	}
	return pickSourceFile(doc.Releases[purl.Version]), nil
}

// pickSourceFile prefers the declared sdist, then anything that looks
// like a source tarball.
func pickSourceFile(files []pypiFile) string {
	for _, f := range files {
		if f.PackageType == "sdist" && f.URL != "" {
			return f.URL
		}
	}
	for _, f := range files {
		if strings.HasSuffix(f.URL, ".tar.gz") {
			return f.URL
		}
	}
	return ""
}

// pickLatestRelease selects the highest PEP 440 release that ships a
// source distribution. Pre-releases only win when nothing final exists,
// which pep440's ordering already encodes.
func pickLatestRelease(releases map[string][]pypiFile) string {
	var (
		best    pep440.Version
		bestURL string
		have    bool
	)
	for raw, files := range releases {
		url := pickSourceFile(files)
		if url == "" {
			continue
		}
		v, err := pep440.Parse(raw)
		if err != nil {
			continue
		}
		if !have || v.GreaterThan(best) {
			best = v
			bestURL = url
			have = true
		}
	}
	return bestURL
}

func (h PypiHandler) legacyURL(purl types.Purl) string {
	if purl.Version == "" {
		return ""
	}
	first := strings.ToLower(purl.Name[:1])
	return fmt.Sprintf("%s/%s/%s/%s-%s.tar.gz", pypiLegacyBase, first, purl.Name, purl.Name, purl.Version)
}

func (h PypiHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Version == "" {
		return nil
	}
	return []string{"pip", "download", "--no-deps", "--no-binary", ":all:", fmt.Sprintf("%s==%s", purl.Name, purl.Version)}
}

func (h PypiHandler) PackageManagers() []string { return []string{"pip", "pip3"} }

// ParseFallbackOutput pulls the source URL out of pip's progress log,
// which prints either "Downloading <url>" or "... from <url>".
func (h PypiHandler) ParseFallbackOutput(output string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		for i, field := range fields {
			if (field == "Downloading" || field == "from") && i+1 < len(fields) && isHTTPURL(fields[i+1]) {
				return fields[i+1]
			}
		}
	}
	return ""
}

func (h PypiHandler) SupportsLatest() bool { return true }

var _ ports.Handler = PypiHandler{}
