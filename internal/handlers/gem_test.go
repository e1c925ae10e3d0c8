package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGemDirectURL(t *testing.T) {
	handler := NewGemHandler(&fakeHTTP{}, "")

	url, err := handler.BuildDownloadURL(mustParse(t, "pkg:gem/rails@7.0.0"))
	require.NoError(t, err)
	require.Equal(t, "https://rubygems.org/downloads/rails-7.0.0.gem", url)
}

func TestGemQueryAPIPrefersGemURI(t *testing.T) {
	http := &fakeHTTP{responses: map[string]string{
		"https://rubygems.org/api/v2/rubygems/rails/versions/7.0.0.json": `{
			"gem_uri": "https://rubygems.org/gems/rails-7.0.0.gem",
			"source_code_uri": "https://github.com/rails/rails"
		}`,
	}}
	handler := NewGemHandler(http, "")

	url, err := handler.QueryAPI(t.Context(), mustParse(t, "pkg:gem/rails@7.0.0"))
	require.NoError(t, err)
	require.Equal(t, "https://rubygems.org/gems/rails-7.0.0.gem", url)
}

func TestGemQueryAPISourceCodeURI(t *testing.T) {
	http := &fakeHTTP{responses: map[string]string{
		"https://rubygems.org/api/v2/rubygems/rack/versions/3.0.0.json": `{
			"source_code_uri": "https://github.com/rack/rack"
		}`,
	}}
	handler := NewGemHandler(http, "")

	url, err := handler.QueryAPI(t.Context(), mustParse(t, "pkg:gem/rack@3.0.0"))
	require.NoError(t, err)
	require.Equal(t, "https://github.com/rack/rack.git", url)
}

func TestGemQueryAPINonGithubSourceIsKeptVerbatim(t *testing.T) {
	http := &fakeHTTP{responses: map[string]string{
		"https://rubygems.org/api/v2/rubygems/odd/versions/1.0.0.json": `{
			"source_code_uri": "https://evil.com/github.com/odd"
		}`,
	}}
	handler := NewGemHandler(http, "")

	url, err := handler.QueryAPI(t.Context(), mustParse(t, "pkg:gem/odd@1.0.0"))
	require.NoError(t, err)
	require.Equal(t, "https://evil.com/github.com/odd", url, "a github.com substring is not a github host")
}

func TestGemQueryAPIHomepageOnlyWhenGithub(t *testing.T) {
	http := &fakeHTTP{responses: map[string]string{
		"https://rubygems.org/api/v2/rubygems/a/versions/1.0.0.json": `{
			"homepage_uri": "https://github.com/user/a"
		}`,
		"https://rubygems.org/api/v2/rubygems/b/versions/1.0.0.json": `{
			"homepage_uri": "https://example.com/b"
		}`,
	}}
	handler := NewGemHandler(http, "")

	url, err := handler.QueryAPI(t.Context(), mustParse(t, "pkg:gem/a@1.0.0"))
	require.NoError(t, err)
	require.Equal(t, "https://github.com/user/a.git", url)

	url, err = handler.QueryAPI(t.Context(), mustParse(t, "pkg:gem/b@1.0.0"))
	require.NoError(t, err)
	require.Empty(t, url, "a marketing homepage is not a source location")
}

func TestGemFallbackCommand(t *testing.T) {
	handler := NewGemHandler(&fakeHTTP{}, "")

	require.Equal(t, []string{"gem", "fetch", "rails", "--version", "7.0.0"},
		handler.FallbackCommand(mustParse(t, "pkg:gem/rails@7.0.0")))
	require.Nil(t, handler.FallbackCommand(mustParse(t, "pkg:gem/rails")))
}
