package app

import (
	"context"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"purl2src/internal/types"
)

type ResolveRequest struct {
	Purls  []string
	Config Config
}

type ResolveResult struct {
	Results []types.ResolutionResult
	// Failures counts records that did not resolve; the CLI maps a
	// non-zero value onto its exit code.
	Failures int
}

// Resolve runs the batch. The result slice has one slot per requested
// PURL in input order.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	if len(req.Purls) == 0 {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one purl is required")
	}
	for _, purl := range req.Purls {
		assert.NotEmpty(ctx, purl, "purl must not be blank")
	}

	engine := s.engine(req.Config)

	var results []types.ResolutionResult
	if req.Config.ExecuteFallback {
		// Fallback execution shells out to package managers whose own
		// caches are not safe under concurrent invocation, so this
		// path stays sequential.
		results = make([]types.ResolutionResult, len(req.Purls))
		for i, purl := range req.Purls {
			results[i] = engine.ResolveWithFallback(ctx, purl)
			if req.Config.OnResult != nil {
				req.Config.OnResult(results[i])
			}
		}
	} else {
		results = engine.ResolveAll(ctx, req.Purls)
	}

	failures := 0
	for _, result := range results {
		if !result.Succeeded() {
			failures++
		}
	}
	return ResolveResult{Results: results, Failures: failures}, nil
}
