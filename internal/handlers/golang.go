package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/mod/module"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const goProxyBase = "https://proxy.golang.org"

// GolangHandler resolves module zips from the module proxy. Paths and
// versions use the proxy's case-encoding (uppercase letters become
// "!"+lowercase); slashes stay literal.
type GolangHandler struct {
	HTTP    ports.HTTPPort
	BaseURL string
}

func NewGolangHandler(http ports.HTTPPort, baseURL string) GolangHandler {
	return GolangHandler{HTTP: http, BaseURL: baseOr(baseURL, goProxyBase)}
}

func (h GolangHandler) Ecosystem() types.Ecosystem { return types.EcosystemGolang }

func (h GolangHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	return h.zipURL(h.modulePath(purl), purl.Version)
}

// QueryAPI probes the .info endpoint to confirm the proxy knows the
// version before handing out the .zip URL.
func (h GolangHandler) QueryAPI(ctx context.Context, purl types.Purl) (string, error) {
	if purl.Version == "" {
		return "", nil
	}
	path := h.modulePath(purl)
	escPath, err := module.EscapePath(path)
	if err != nil {
		return "", invalidModuleError(path, err)
	}
	escVersion, err := module.EscapeVersion(purl.Version)
	if err != nil {
		return "", invalidModuleError(purl.Version, err)
	}
	var info struct {
		Version string `json:"Version"`
	}
	endpoint := fmt.Sprintf("%s/%s/@v/%s.info", h.BaseURL, escPath, escVersion)
	if err := h.HTTP.GetJSON(ctx, endpoint, &info); err != nil {
		return "", nil
	}
	if info.Version == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/%s/@v/%s.zip", h.BaseURL, escPath, escVersion), nil
}

func (h GolangHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Version == "" {
		return nil
	}
	return []string{"go", "mod", "download", "-json", fmt.Sprintf("%s@%s", h.modulePath(purl), purl.Version)}
}

func (h GolangHandler) PackageManagers() []string { return []string{"go"} }

// ParseFallbackOutput reads the JSON blob `go mod download -json`
// prints and rebuilds the proxy zip URL from the resolved Path and
// Version, which may differ from the requested ones (pseudo-versions,
// case folding).
func (h GolangHandler) ParseFallbackOutput(output string) string {
	var resolved struct {
		Path    string `json:"Path"`
		Version string `json:"Version"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &resolved); err != nil {
		return ""
	}
	if resolved.Path == "" || resolved.Version == "" {
		return ""
	}
	url, err := h.zipURL(resolved.Path, resolved.Version)
	if err != nil {
		return ""
	}
	return url
}

func (h GolangHandler) SupportsLatest() bool { return false }

func (h GolangHandler) modulePath(purl types.Purl) string {
	if purl.Namespace == "" {
		return purl.Name
	}
	return purl.Namespace + "/" + purl.Name
}

func (h GolangHandler) zipURL(path string, version string) (string, error) {
	escPath, err := module.EscapePath(path)
	if err != nil {
		return "", invalidModuleError(path, err)
	}
	escVersion, err := module.EscapeVersion(version)
	if err != nil {
		return "", invalidModuleError(version, err)
	}
	return fmt.Sprintf("%s/%s/@v/%s.zip", h.BaseURL, escPath, escVersion), nil
}

func invalidModuleError(value string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid module reference: %s", value)).
		WithCause(cause)
}

var _ ports.Handler = GolangHandler{}
