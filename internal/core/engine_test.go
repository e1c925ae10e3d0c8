package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

type fakeHandler struct {
	eco            types.Ecosystem
	directURL      string
	directErr      error
	apiURL         string
	apiErr         error
	apiCalls       int
	apiDelay       time.Duration
	fallbackArgv   []string
	parsed         string
	managers       []string
	supportsLatest bool
}

func (f *fakeHandler) Ecosystem() types.Ecosystem { return f.eco }

func (f *fakeHandler) BuildDownloadURL(types.Purl) (string, error) {
	return f.directURL, f.directErr
}

func (f *fakeHandler) QueryAPI(ctx context.Context, _ types.Purl) (string, error) {
	f.apiCalls++
	if f.apiDelay > 0 {
		select {
		case <-time.After(f.apiDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.apiURL, f.apiErr
}

func (f *fakeHandler) FallbackCommand(types.Purl) []string { return f.fallbackArgv }

func (f *fakeHandler) PackageManagers() []string { return f.managers }

func (f *fakeHandler) ParseFallbackOutput(string) string { return f.parsed }

func (f *fakeHandler) SupportsLatest() bool { return f.supportsLatest }

type fakeRegistry struct {
	handlers map[types.Ecosystem]ports.Handler
}

func (f fakeRegistry) Handler(eco types.Ecosystem) (ports.Handler, bool) {
	h, ok := f.handlers[eco]
	return h, ok
}

func (f fakeRegistry) Ecosystems() []types.Ecosystem { return nil }

type fakeExecutor struct {
	available map[string]bool
	output    string
	err       error
	ran       [][]string
}

func (f *fakeExecutor) IsAvailable(binary string) bool { return f.available[binary] }

func (f *fakeExecutor) Run(_ context.Context, argv []string) (string, error) {
	f.ran = append(f.ran, argv)
	return f.output, f.err
}

type fakeValidator struct {
	err   error
	calls int
}

func (f *fakeValidator) Validate(context.Context, string, string) error {
	f.calls++
	return f.err
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]types.ResolutionResult
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]types.ResolutionResult{}}
}

func (c *memCache) Get(key string) (types.ResolutionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[key]
	return result, ok
}

func (c *memCache) Set(key string, result types.ResolutionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
}

func newTestEngine(handler ports.Handler, validator ports.ValidatorPort, executor ports.ExecutorPort, cache ports.ResultCachePort, opts EngineOptions) Engine {
	registry := fakeRegistry{handlers: map[types.Ecosystem]ports.Handler{handler.Ecosystem(): handler}}
	return NewEngine(registry, validator, executor, cache, opts)
}

func TestResolveDirectSuccess(t *testing.T) {
	handler := &fakeHandler{eco: types.EcosystemNpm, directURL: "https://registry.npmjs.org/lodash/-/lodash-4.17.21.tgz"}
	engine := newTestEngine(handler, nil, nil, nil, EngineOptions{})

	result := engine.Resolve(t.Context(), "pkg:npm/lodash@4.17.21")
	require.Equal(t, types.StatusSuccess, result.Status)
	require.Equal(t, types.MethodDirect, result.Method)
	require.Equal(t, "https://registry.npmjs.org/lodash/-/lodash-4.17.21.tgz", result.DownloadURL)
	require.Equal(t, types.ValidationSkipped, result.Validated)
	require.Equal(t, 0, handler.apiCalls, "direct hit must not reach the api")
}

func TestResolveFallsThroughToAPI(t *testing.T) {
	handler := &fakeHandler{eco: types.EcosystemNpm, apiURL: "https://registry.npmjs.org/tarball.tgz"}
	engine := newTestEngine(handler, nil, nil, nil, EngineOptions{})

	result := engine.Resolve(t.Context(), "pkg:npm/left-pad@1.3.0")
	require.Equal(t, types.StatusSuccess, result.Status)
	require.Equal(t, types.MethodAPI, result.Method)
	require.Equal(t, 1, handler.apiCalls)
}

func TestResolveReportsFallbackOnMiss(t *testing.T) {
	handler := &fakeHandler{
		eco:          types.EcosystemNpm,
		fallbackArgv: []string{"npm", "view", "ghost@9.9.9", "dist.tarball"},
		managers:     []string{"npm"},
	}
	executor := &fakeExecutor{available: map[string]bool{"npm": true}}
	engine := newTestEngine(handler, nil, executor, nil, EngineOptions{})

	result := engine.Resolve(t.Context(), "pkg:npm/ghost@9.9.9")
	require.Equal(t, types.StatusFailed, result.Status)
	require.NotNil(t, result.Err)
	require.Equal(t, types.ErrorKindHandler, result.Err.Kind)
	require.Equal(t, "npm view ghost@9.9.9 dist.tarball", result.FallbackCommand)
	require.True(t, result.FallbackAvailable)
	require.Empty(t, executor.ran, "plain resolve must never execute commands")
}

func TestResolveFallbackUnavailableWithoutBinary(t *testing.T) {
	handler := &fakeHandler{
		eco:          types.EcosystemNpm,
		fallbackArgv: []string{"npm", "view", "ghost@9.9.9", "dist.tarball"},
		managers:     []string{"npm"},
	}
	executor := &fakeExecutor{available: map[string]bool{}}
	engine := newTestEngine(handler, nil, executor, nil, EngineOptions{})

	result := engine.Resolve(t.Context(), "pkg:npm/ghost@9.9.9")
	require.Equal(t, "npm view ghost@9.9.9 dist.tarball", result.FallbackCommand)
	require.False(t, result.FallbackAvailable)
}

func TestResolveMissingVersion(t *testing.T) {
	handler := &fakeHandler{eco: types.EcosystemNpm}
	engine := newTestEngine(handler, nil, nil, nil, EngineOptions{})

	result := engine.Resolve(t.Context(), "pkg:npm/lodash")
	require.Equal(t, types.StatusFailed, result.Status)
	require.NotNil(t, result.Err)
	require.Equal(t, types.ErrorKindParse, result.Err.Kind)
	require.Contains(t, result.Err.Message, "version is required")
	require.Equal(t, 0, handler.apiCalls, "missing version must not reach the api")
}

func TestResolveMissingVersionWithLatestSupport(t *testing.T) {
	handler := &fakeHandler{
		eco:            types.EcosystemPyPI,
		apiURL:         "https://files.pythonhosted.org/requests-2.31.0.tar.gz",
		supportsLatest: true,
	}
	engine := newTestEngine(handler, nil, nil, nil, EngineOptions{})

	result := engine.Resolve(t.Context(), "pkg:pypi/requests")
	require.Equal(t, types.StatusSuccess, result.Status)
	require.Equal(t, types.MethodAPI, result.Method)
}

func TestResolveParseFailure(t *testing.T) {
	engine := newTestEngine(&fakeHandler{eco: types.EcosystemNpm}, nil, nil, nil, EngineOptions{})

	result := engine.Resolve(t.Context(), "pkg:homebrew/wget@1.21")
	require.Equal(t, types.StatusFailed, result.Status)
	require.NotNil(t, result.Err)
	require.Equal(t, types.ErrorKindParse, result.Err.Kind)
	require.Empty(t, result.FallbackCommand)
}

func TestValidationFailureKeepsSuccess(t *testing.T) {
	handler := &fakeHandler{eco: types.EcosystemNpm, directURL: "https://registry.npmjs.org/x.tgz"}
	validator := &fakeValidator{err: errors.New("status=404")}
	engine := newTestEngine(handler, validator, nil, nil, EngineOptions{Validate: true})

	result := engine.Resolve(t.Context(), "pkg:npm/x@1.0.0")
	require.Equal(t, types.StatusSuccess, result.Status)
	require.Equal(t, types.ValidationFailed, result.Validated)
	require.Equal(t, "https://registry.npmjs.org/x.tgz", result.DownloadURL)
}

func TestValidationPassed(t *testing.T) {
	handler := &fakeHandler{eco: types.EcosystemNpm, directURL: "https://registry.npmjs.org/x.tgz"}
	validator := &fakeValidator{}
	engine := newTestEngine(handler, validator, nil, nil, EngineOptions{Validate: true})

	result := engine.Resolve(t.Context(), "pkg:npm/x@1.0.0")
	require.Equal(t, types.ValidationPassed, result.Validated)
	require.Equal(t, 1, validator.calls)
}

func TestResolveCachesResults(t *testing.T) {
	handler := &fakeHandler{eco: types.EcosystemNpm, apiURL: "https://registry.npmjs.org/x.tgz"}
	cache := newMemCache()
	engine := newTestEngine(handler, nil, nil, cache, EngineOptions{})

	first := engine.Resolve(t.Context(), "pkg:npm/x@1.0.0")
	second := engine.Resolve(t.Context(), "pkg:npm/x@1.0.0")
	require.Equal(t, first, second)
	require.Equal(t, 1, handler.apiCalls, "second resolve must come from the cache")
}

func TestResolveWithFallbackExecutes(t *testing.T) {
	handler := &fakeHandler{
		eco:          types.EcosystemNpm,
		fallbackArgv: []string{"npm", "view", "x@1.0.0", "dist.tarball"},
		managers:     []string{"npm"},
		parsed:       "https://registry.npmjs.org/x/-/x-1.0.0.tgz",
	}
	executor := &fakeExecutor{
		available: map[string]bool{"npm": true},
		output:    "https://registry.npmjs.org/x/-/x-1.0.0.tgz\n",
	}
	engine := newTestEngine(handler, nil, executor, nil, EngineOptions{})

	result := engine.ResolveWithFallback(t.Context(), "pkg:npm/x@1.0.0")
	require.Equal(t, types.StatusSuccess, result.Status)
	require.Equal(t, types.MethodFallback, result.Method)
	require.Equal(t, "https://registry.npmjs.org/x/-/x-1.0.0.tgz", result.DownloadURL)
	require.Len(t, executor.ran, 1)
}

func TestResolveWithFallbackAdvisoryOutput(t *testing.T) {
	handler := &fakeHandler{
		eco:          types.EcosystemMaven,
		fallbackArgv: []string{"mvn", "dependency:get", "-Dartifact=g:a:1", "-Dtransitive=false"},
		managers:     []string{"mvn"},
	}
	executor := &fakeExecutor{available: map[string]bool{"mvn": true}, output: "BUILD SUCCESS"}
	engine := newTestEngine(handler, nil, executor, nil, EngineOptions{})

	result := engine.ResolveWithFallback(t.Context(), "pkg:maven/g/a@1")
	require.Equal(t, types.StatusFailed, result.Status, "advisory fallback output must not fabricate a url")
	require.Len(t, executor.ran, 1)
}

func TestResolveAllPreservesOrder(t *testing.T) {
	handler := &fakeHandler{eco: types.EcosystemCargo, directURL: "https://crates.io/api/v1/crates/serde/1.0.0/download"}
	engine := newTestEngine(handler, nil, nil, nil, EngineOptions{Concurrency: 4})

	inputs := []string{
		"pkg:cargo/serde@1.0.0",
		"pkg:homebrew/bad@1",
		"pkg:cargo/tokio@1.38.0",
	}
	results := engine.ResolveAll(t.Context(), inputs)
	require.Len(t, results, len(inputs))
	require.Equal(t, types.StatusSuccess, results[0].Status)
	require.Equal(t, types.StatusFailed, results[1].Status)
	require.Equal(t, types.ErrorKindParse, results[1].Err.Kind)
	require.Equal(t, types.StatusSuccess, results[2].Status)
}

func TestResolveAllTimeoutIsolation(t *testing.T) {
	slow := &fakeHandler{eco: types.EcosystemPyPI, apiDelay: 5 * time.Second, supportsLatest: true}
	fast := &fakeHandler{eco: types.EcosystemCargo, directURL: "https://crates.io/api/v1/crates/serde/1.0.0/download"}
	registry := fakeRegistry{handlers: map[types.Ecosystem]ports.Handler{
		types.EcosystemPyPI:  slow,
		types.EcosystemCargo: fast,
	}}
	engine := NewEngine(registry, nil, nil, nil, EngineOptions{Concurrency: 2, Timeout: 50 * time.Millisecond})

	start := time.Now()
	results := engine.ResolveAll(t.Context(), []string{"pkg:pypi/stuck", "pkg:cargo/serde@1.0.0"})
	require.Less(t, time.Since(start), 2*time.Second, "timeout must cut off the slow item")
	require.Equal(t, types.StatusFailed, results[0].Status)
	require.Equal(t, types.StatusSuccess, results[1].Status)
}

func TestShellMetacharactersStayInert(t *testing.T) {
	handler := &fakeHandler{
		eco:          types.EcosystemNpm,
		fallbackArgv: []string{"npm", "view", "x@1.0.0; rm -rf /", "dist.tarball"},
		managers:     []string{"npm"},
	}
	executor := &fakeExecutor{available: map[string]bool{"npm": true}, output: "not a url"}
	engine := newTestEngine(handler, nil, executor, nil, EngineOptions{})

	_ = engine.ResolveWithFallback(t.Context(), "pkg:npm/x@1.0.0")
	require.Len(t, executor.ran, 1)
	require.Equal(t, "x@1.0.0; rm -rf /", executor.ran[0][2],
		"argument with shell metacharacters must pass through as a single argv element")
}
