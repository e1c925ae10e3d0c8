package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"purl2src/internal/ports"
	"purl2src/internal/shared"
	"purl2src/internal/types"
)

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 30 * time.Second
)

// Engine drives the three-level resolution strategy: construct the
// download URL directly, query the registry API, and finally report
// the package-manager fallback command. Fallback execution is opt-in
// through ResolveWithFallback; plain Resolve never spawns processes.
type Engine struct {
	registry  ports.HandlerRegistry
	validator ports.ValidatorPort
	executor  ports.ExecutorPort
	cache     ports.ResultCachePort
	opts      EngineOptions
}

type EngineOptions struct {
	// Validate runs the URL reachability check on every resolved URL.
	Validate bool
	// Concurrency bounds the batch worker pool.
	Concurrency int
	// Timeout caps each identifier in a batch, so one slow registry
	// cannot stall its siblings.
	Timeout time.Duration
	// OnResult, when set, observes every finished batch item. It may
	// be called from multiple workers at once.
	OnResult func(types.ResolutionResult)
}

func NewEngine(registry ports.HandlerRegistry, validator ports.ValidatorPort, executor ports.ExecutorPort, cache ports.ResultCachePort, opts EngineOptions) Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return Engine{
		registry:  registry,
		validator: validator,
		executor:  executor,
		cache:     cache,
		opts:      opts,
	}
}

// Resolve turns one PURL into a result record. Failures are encoded
// in the record, never returned: a batch caller gets one slot per
// input regardless of what went wrong inside.
func (e Engine) Resolve(ctx context.Context, raw string) types.ResolutionResult {
	purl, err := ParsePurl(raw)
	if err != nil {
		return failedResult(raw, types.ErrorKindParse, err.Error())
	}
	normalized := purl.String()
	if e.cache != nil {
		if cached, ok := e.cache.Get(e.cacheKey(normalized)); ok {
			log.Ctx(ctx).Debug().Str("purl", normalized).Msg("cache hit")
			return cached
		}
	}

	handler, ok := e.registry.Handler(purl.Ecosystem)
	if !ok {
		// Unknown tags are rejected by the parser, so a miss here
		// means the registry was built without a handler set.
		return failedResult(normalized, types.ErrorKindHandler,
			fmt.Sprintf("no handler registered for ecosystem %s", purl.Ecosystem))
	}

	result := e.resolve(ctx, normalized, purl, handler)
	if e.cache != nil {
		e.cache.Set(e.cacheKey(normalized), result)
	}
	return result
}

func (e Engine) resolve(ctx context.Context, normalized string, purl types.Purl, handler ports.Handler) types.ResolutionResult {
	result := types.ResolutionResult{
		Purl:      normalized,
		Status:    types.StatusFailed,
		Method:    types.MethodNone,
		Validated: types.ValidationSkipped,
	}
	fallbackArgv := handler.FallbackCommand(purl)
	if len(fallbackArgv) > 0 {
		result.FallbackCommand = shared.ShellJoin(fallbackArgv)
		result.FallbackAvailable = e.anyManagerAvailable(handler)
	}

	logger := log.Ctx(ctx).With().Str("purl", normalized).Logger()

	// Level 1: predictable URL construction.
	directURL, directErr := handler.BuildDownloadURL(purl)
	if directErr != nil {
		logger.Debug().Err(directErr).Msg("direct construction failed, trying api")
	}
	if directURL != "" {
		logger.Debug().Str("url", directURL).Msg("resolved directly")
		return e.finish(ctx, result, purl, directURL, types.MethodDirect)
	}

	if purl.Version == "" && !handler.SupportsLatest() {
		result.Err = &types.ResolutionError{
			Kind:    types.ErrorKindParse,
			Message: fmt.Sprintf("version is required for ecosystem %s", purl.Ecosystem),
		}
		return result
	}

	// Level 2: registry API.
	apiURL, err := handler.QueryAPI(ctx, purl)
	if err != nil {
		logger.Debug().Err(err).Msg("api query failed")
	}
	if apiURL != "" {
		logger.Debug().Str("url", apiURL).Msg("resolved via api")
		return e.finish(ctx, result, purl, apiURL, types.MethodAPI)
	}

	// Level 3: report the fallback, do not run it.
	message := fmt.Sprintf("could not resolve %s", normalized)
	switch {
	case err != nil:
		message = err.Error()
	case directErr != nil:
		message = directErr.Error()
	case result.FallbackCommand != "":
		message += "; a package-manager fallback command is available"
	}
	result.Err = &types.ResolutionError{Kind: types.ErrorKindHandler, Message: message}
	return result
}

// ResolveWithFallback resolves like Resolve and, when both URL levels
// miss, executes the handler's package-manager command and parses its
// output for a download URL. Advisory commands (no parseable output)
// leave the failed result untouched.
func (e Engine) ResolveWithFallback(ctx context.Context, raw string) types.ResolutionResult {
	result := e.Resolve(ctx, raw)
	if result.Succeeded() || result.FallbackCommand == "" || !result.FallbackAvailable {
		return result
	}
	purl, err := ParsePurl(raw)
	if err != nil {
		return result
	}
	handler, ok := e.registry.Handler(purl.Ecosystem)
	if !ok {
		return result
	}

	argv := handler.FallbackCommand(purl)
	output, err := e.executor.Run(ctx, argv)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("purl", result.Purl).Msg("fallback command failed")
		return result
	}
	url := handler.ParseFallbackOutput(output)
	if url == "" {
		return result
	}
	result.Err = nil
	result.Status = types.StatusSuccess
	result = e.finish(ctx, result, purl, url, types.MethodFallback)
	if e.cache != nil {
		e.cache.Set(e.cacheKey(result.Purl), result)
	}
	return result
}

// ResolveAll resolves a batch concurrently. The output slice has one
// slot per input at the same index; workers never interleave writes
// to the same slot, so no lock is needed around results.
func (e Engine) ResolveAll(ctx context.Context, raws []string) []types.ResolutionResult {
	results := make([]types.ResolutionResult, len(raws))
	if len(raws) == 0 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := e.opts.Concurrency
	if workers > len(raws) {
		workers = len(raws)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				itemCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
				results[idx] = e.Resolve(itemCtx, raws[idx])
				cancel()
				if e.opts.OnResult != nil {
					e.opts.OnResult(results[idx])
				}
			}
		}()
	}
	for idx := range raws {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

// finish applies validation and marks the result successful. A failed
// validation downgrades the validated field only: the URL is still the
// best answer the resolver has.
func (e Engine) finish(ctx context.Context, result types.ResolutionResult, purl types.Purl, url string, method types.Method) types.ResolutionResult {
	result.DownloadURL = url
	result.Method = method
	result.Status = types.StatusSuccess
	result.Err = nil
	result.Validated = types.ValidationSkipped

	if !e.opts.Validate || e.validator == nil {
		return result
	}
	if err := e.validator.Validate(ctx, url, purl.Qualifier("checksum")); err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("url", url).Msg("validation failed")
		result.Validated = types.ValidationFailed
		return result
	}
	result.Validated = types.ValidationPassed
	return result
}

func (e Engine) anyManagerAvailable(handler ports.Handler) bool {
	if e.executor == nil {
		return false
	}
	for _, binary := range handler.PackageManagers() {
		if e.executor.IsAvailable(binary) {
			return true
		}
	}
	return false
}

// cacheKey isolates validated and unvalidated runs from each other so
// a --no-validate pass never serves a stale validation verdict.
func (e Engine) cacheKey(normalized string) string {
	if e.opts.Validate {
		return normalized + "|v1"
	}
	return normalized + "|v0"
}

func failedResult(purl string, kind types.ErrorKind, message string) types.ResolutionResult {
	return types.ResolutionResult{
		Purl:      purl,
		Status:    types.StatusFailed,
		Method:    types.MethodNone,
		Validated: types.ValidationSkipped,
		Err:       &types.ResolutionError{Kind: kind, Message: message},
	}
}
