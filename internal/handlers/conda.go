package handlers

import (
	"context"
	"fmt"
	"strings"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const (
	condaDefaultsBase  = "https://repo.anaconda.com/pkgs"
	condaCommunityBase = "https://anaconda.org"
)

// CondaHandler resolves conda packages. A conda artifact is only
// addressable with its build string, channel and subdir, so all three
// qualifiers are mandatory.
type CondaHandler struct {
	BaseURL string
}

func NewCondaHandler(baseURL string) CondaHandler {
	return CondaHandler{BaseURL: baseOr(baseURL, condaDefaultsBase)}
}

func (h CondaHandler) Ecosystem() types.Ecosystem { return types.EcosystemConda }

func (h CondaHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	build := purl.Qualifier("build")
	channel := purl.Qualifier("channel")
	subdir := purl.Qualifier("subdir")
	switch {
	case build == "":
		return "", missingQualifierError("build")
	case channel == "":
		return "", missingQualifierError("channel")
	case subdir == "":
		return "", missingQualifierError("subdir")
	}
	file := fmt.Sprintf("%s-%s-%s.tar.bz2", purl.Name, purl.Version, build)
	if channel == "main" || channel == "defaults" {
		return fmt.Sprintf("%s/main/%s/%s", h.BaseURL, subdir, file), nil
	}
	return fmt.Sprintf("%s/%s/%s/%s/download/%s/%s", condaCommunityBase, channel, purl.Name, purl.Version, subdir, file), nil
}

func (h CondaHandler) QueryAPI(context.Context, types.Purl) (string, error) {
	return "", nil
}

func (h CondaHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Version == "" {
		return nil
	}
	channel := purl.Qualifier("channel")
	if channel == "" {
		channel = "conda-forge"
	}
	return []string{"conda", "search", "-c", channel, fmt.Sprintf("%s=%s", purl.Name, purl.Version), "--info"}
}

func (h CondaHandler) PackageManagers() []string {
	return []string{"conda", "mamba", "micromamba"}
}

// ParseFallbackOutput scans `conda search --info` output for its
// "url         : <value>" field.
func (h CondaHandler) ParseFallbackOutput(output string) string {
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(key) != "url" {
			continue
		}
		if candidate := strings.TrimSpace(value); isHTTPURL(candidate) {
			return candidate
		}
	}
	return ""
}

func (h CondaHandler) SupportsLatest() bool { return false }

var _ ports.Handler = CondaHandler{}
