package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGithubDirectCloneURL(t *testing.T) {
	handler := NewGithubHandler(&fakeHTTP{}, "")

	url, err := handler.BuildDownloadURL(mustParse(t, "pkg:github/gorilla/mux@v1.8.0"))
	require.NoError(t, err)
	require.Equal(t, "https://github.com/gorilla/mux.git", url)

	url, err = handler.BuildDownloadURL(mustParse(t, "pkg:github/mux@v1.8.0"))
	require.NoError(t, err)
	require.Empty(t, url, "a repository without an owner is not addressable")
}

func TestGithubSubpathRawURL(t *testing.T) {
	handler := NewGithubHandler(&fakeHTTP{}, "")

	url, err := handler.BuildDownloadURL(mustParse(t, "pkg:github/gorilla/mux@v1.8.0#README.md"))
	require.NoError(t, err)
	require.Equal(t, "https://raw.githubusercontent.com/gorilla/mux/v1.8.0/README.md", url)

	url, err = handler.BuildDownloadURL(mustParse(t, "pkg:github/gorilla/mux#README.md"))
	require.NoError(t, err)
	require.Equal(t, "https://raw.githubusercontent.com/gorilla/mux/main/README.md", url)
}

func TestGithubQueryAPIReleaseTarball(t *testing.T) {
	http := &fakeHTTP{responses: map[string]string{
		"https://api.github.com/repos/gorilla/mux/releases/tags/v1.8.0": `{
			"tarball_url": "https://api.github.com/repos/gorilla/mux/tarball/v1.8.0"
		}`,
	}}
	handler := NewGithubHandler(http, "")

	url, err := handler.QueryAPI(t.Context(), mustParse(t, "pkg:github/gorilla/mux@v1.8.0"))
	require.NoError(t, err)
	require.Equal(t, "https://api.github.com/repos/gorilla/mux/tarball/v1.8.0", url)
}

func TestGithubQueryAPIFallsBackToArchive(t *testing.T) {
	http := &fakeHTTP{errs: map[string]error{
		"https://api.github.com/repos/gorilla/mux/releases/tags/v0.0.1": errors.New("rate limited"),
	}}
	handler := NewGithubHandler(http, "")

	url, err := handler.QueryAPI(t.Context(), mustParse(t, "pkg:github/gorilla/mux@v0.0.1"))
	require.NoError(t, err)
	require.Equal(t, "https://github.com/gorilla/mux/archive/refs/tags/v0.0.1.tar.gz", url)
}

func TestGithubBranchHeadSkipsAPI(t *testing.T) {
	http := &fakeHTTP{}
	handler := NewGithubHandler(http, "")

	url, err := handler.QueryAPI(t.Context(), mustParse(t, "pkg:github/gorilla/mux@main"))
	require.NoError(t, err)
	require.NotEmpty(t, url)
	require.Empty(t, http.calls, "branch heads have no release to look up")
}

func TestGithubFallbackCommand(t *testing.T) {
	handler := NewGithubHandler(&fakeHTTP{}, "")

	require.Equal(t, []string{"git", "clone", "--branch", "v1.8.0", "--depth", "1", "https://github.com/gorilla/mux.git"},
		handler.FallbackCommand(mustParse(t, "pkg:github/gorilla/mux@v1.8.0")))
	require.Equal(t, []string{"git", "clone", "https://github.com/gorilla/mux.git"},
		handler.FallbackCommand(mustParse(t, "pkg:github/gorilla/mux")))
	require.Nil(t, handler.FallbackCommand(mustParse(t, "pkg:github/mux")))
}
