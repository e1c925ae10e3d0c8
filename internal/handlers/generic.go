package handlers

import (
	"context"
	"strings"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

// GenericHandler covers artifacts outside any registry. Everything it
// knows comes from qualifiers: download_url wins outright, vcs_url
// names a repository with an optional @commit pin, and checksum feeds
// content verification downstream.
type GenericHandler struct{}

func NewGenericHandler() GenericHandler { return GenericHandler{} }

func (h GenericHandler) Ecosystem() types.Ecosystem { return types.EcosystemGeneric }

func (h GenericHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if direct := purl.Qualifier("download_url"); direct != "" {
		return direct, nil
	}
	if vcs, _ := splitVCSRef(purl.Qualifier("vcs_url")); vcs != "" {
		return vcs, nil
	}
	return "", nil
}

func (h GenericHandler) QueryAPI(context.Context, types.Purl) (string, error) {
	return "", nil
}

func (h GenericHandler) FallbackCommand(purl types.Purl) []string {
	vcs, _ := splitVCSRef(purl.Qualifier("vcs_url"))
	if vcs == "" {
		return nil
	}
	return []string{"git", "clone", vcs}
}

func (h GenericHandler) PackageManagers() []string { return []string{"git"} }

func (h GenericHandler) ParseFallbackOutput(string) string { return "" }

func (h GenericHandler) SupportsLatest() bool { return false }

// splitVCSRef strips the SPDX-style "git+" prefix and separates an
// "@commit" pin from the repository URL. Only a trailing slash-free
// segment counts as a pin, so user-info in the authority survives.
func splitVCSRef(raw string) (vcsURL string, ref string) {
	if raw == "" {
		return "", ""
	}
	trimmed := strings.TrimPrefix(raw, "git+")
	schemeEnd := strings.Index(trimmed, "://")
	at := strings.LastIndex(trimmed, "@")
	if at > schemeEnd+3 && !strings.Contains(trimmed[at+1:], "/") {
		return trimmed[:at], trimmed[at+1:]
	}
	return trimmed, ""
}

var _ ports.Handler = GenericHandler{}
