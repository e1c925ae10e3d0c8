package adapters

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateHeadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewURLValidatorAdapter(5)
	require.NoError(t, validator.Validate(t.Context(), server.URL, ""))
}

func TestValidateFallsBackToRangedGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		require.Equal(t, "bytes=0-0", r.Header.Get("Range"))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	validator := NewURLValidatorAdapter(5)
	require.NoError(t, validator.Validate(t.Context(), server.URL, ""))
}

func TestValidateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := NewURLValidatorAdapter(5)
	require.Error(t, validator.Validate(t.Context(), server.URL, ""))
}

func TestValidateChecksum(t *testing.T) {
	content := []byte("artifact-bytes")
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	validator := NewURLValidatorAdapter(5)
	require.NoError(t, validator.Validate(t.Context(), server.URL, "sha256:"+digest))

	// Bare digests default to sha256, and comparison ignores case.
	require.NoError(t, validator.Validate(t.Context(), server.URL, digest))

	err := validator.Validate(t.Context(), server.URL, "sha256:"+hex.EncodeToString(make([]byte, 32)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum mismatch")
}

func TestValidateUnknownChecksumAlgorithm(t *testing.T) {
	validator := NewURLValidatorAdapter(5)
	err := validator.Validate(t.Context(), "https://example.com/x", "crc32:abcd")
	require.Error(t, err)
}
