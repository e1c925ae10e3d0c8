package adapters

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"purl2src/internal/ports"
	"purl2src/internal/shared"
)

// URLValidatorAdapter checks that a resolved URL is actually
// retrievable. A HEAD probe comes first; servers that reject HEAD get
// a one-byte ranged GET instead. When a checksum is supplied the full
// body is streamed through the digest.
type URLValidatorAdapter struct {
	Client *http.Client
}

func NewURLValidatorAdapter(timeoutSec int) *URLValidatorAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &URLValidatorAdapter{Client: &http.Client{Timeout: timeout}}
}

// Validate returns nil when the URL is reachable and, if a checksum is
// given, the content matches it. The checksum format is "algo:hex";
// a bare hex digest is treated as sha256.
func (a *URLValidatorAdapter) Validate(ctx context.Context, url string, checksum string) error {
	if checksum != "" {
		return a.verifyChecksum(ctx, url, checksum)
	}
	if err := a.probe(ctx, url, http.MethodHead); err == nil {
		return nil
	}
	return a.probeRanged(ctx, url)
}

func (a *URLValidatorAdapter) probe(ctx context.Context, url string, method string) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := a.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return shared.HTTPStatusError(resp.StatusCode, url)
}

// probeRanged asks for the first byte only. 206 and a tolerant 200
// both count as reachable.
func (a *URLValidatorAdapter) probeRanged(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Range", "bytes=0-0")
	resp, err := a.Client.Do(req)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("url probe failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusPartialContent || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return nil
	}
	return shared.HTTPStatusError(resp.StatusCode, url)
}

func (a *URLValidatorAdapter) verifyChecksum(ctx context.Context, url string, checksum string) error {
	algo, want := splitChecksum(checksum)
	digest, err := newDigest(algo)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := a.Client.Do(req)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("download for checksum verification failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.HTTPStatusError(resp.StatusCode, url)
	}
	if _, err := io.Copy(digest, resp.Body); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stream content for checksum").
			WithCause(err)
	}
	got := hex.EncodeToString(digest.Sum(nil))
	if !strings.EqualFold(got, want) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("checksum mismatch: expected %s, got %s", strings.ToLower(want), got))
	}
	return nil
}

func splitChecksum(checksum string) (algo string, digest string) {
	if before, after, found := strings.Cut(checksum, ":"); found {
		return strings.ToLower(strings.TrimSpace(before)), strings.TrimSpace(after)
	}
	return "sha256", strings.TrimSpace(checksum)
}

func newDigest(algo string) (hash.Hash, error) {
	switch algo {
	case "sha256":
		return sha256.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported checksum algorithm: %s", algo))
	}
}

var _ ports.ValidatorPort = (*URLValidatorAdapter)(nil)
