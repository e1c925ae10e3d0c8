package handlers

import (
	"context"
	"fmt"
	"strings"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const mavenCentralBase = "https://repo.maven.apache.org/maven2"

// MavenHandler maps group/artifact coordinates onto the Maven Central
// directory layout. The repository_url qualifier switches the base so
// corporate mirrors work without configuration.
type MavenHandler struct {
	BaseURL string
}

func NewMavenHandler(baseURL string) MavenHandler {
	return MavenHandler{BaseURL: baseOr(baseURL, mavenCentralBase)}
}

func (h MavenHandler) Ecosystem() types.Ecosystem { return types.EcosystemMaven }

func (h MavenHandler) BuildDownloadURL(purl types.Purl) (string, error) {
	if purl.Namespace == "" || purl.Version == "" {
		return "", nil
	}
	repo := baseOr(purl.Qualifier("repository_url"), h.BaseURL)
	groupPath := strings.ReplaceAll(purl.Namespace, ".", "/")
	ext, classifier := h.artifactVariant(purl)
	file := fmt.Sprintf("%s-%s", purl.Name, purl.Version)
	if classifier != "" {
		file += "-" + classifier
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s.%s", repo, groupPath, purl.Name, purl.Version, file, ext), nil
}

// artifactVariant reads the type and classifier qualifiers. The
// packaging=sources shorthand is kept as an alias for the sources
// classifier on the default jar.
func (h MavenHandler) artifactVariant(purl types.Purl) (ext string, classifier string) {
	ext = purl.Qualifier("type")
	if ext == "" {
		ext = "jar"
	}
	classifier = purl.Qualifier("classifier")
	if classifier == "" && purl.Qualifier("packaging") == "sources" {
		classifier = "sources"
	}
	return ext, classifier
}

func (h MavenHandler) QueryAPI(context.Context, types.Purl) (string, error) {
	return "", nil
}

// FallbackCommand is advisory only: dependency:get resolves into the
// local repository and prints no remote URL, so its output is never
// parsed. It still verifies the coordinates exist.
func (h MavenHandler) FallbackCommand(purl types.Purl) []string {
	if purl.Namespace == "" || purl.Version == "" {
		return nil
	}
	ext, classifier := h.artifactVariant(purl)
	artifact := fmt.Sprintf("%s:%s:%s", purl.Namespace, purl.Name, purl.Version)
	switch {
	case classifier != "":
		artifact += ":" + ext + ":" + classifier
	case ext != "jar":
		artifact += ":" + ext
	}
	argv := []string{"mvn", "dependency:get", "-Dartifact=" + artifact, "-Dtransitive=false"}
	if repo := purl.Qualifier("repository_url"); repo != "" {
		argv = append(argv, "-DremoteRepositories="+strings.TrimRight(repo, "/"))
	}
	return argv
}

func (h MavenHandler) PackageManagers() []string { return []string{"mvn"} }

func (h MavenHandler) ParseFallbackOutput(string) string { return "" }

func (h MavenHandler) SupportsLatest() bool { return false }

var _ ports.Handler = MavenHandler{}
