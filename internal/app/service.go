package app

import (
	"time"

	"purl2src/internal/adapters"
	"purl2src/internal/core"
	"purl2src/internal/handlers"
	"purl2src/internal/ports"
	"purl2src/internal/types"
)

type Service struct {
	HTTP      ports.HTTPPort
	Validator ports.ValidatorPort
	Executor  ports.ExecutorPort
	Cache     ports.ResultCachePort
}

// Config carries the tunables the CLI exposes. Zero values select the
// defaults of each adapter.
type Config struct {
	Validate        bool
	ExecuteFallback bool
	Concurrency     int
	TimeoutSec      int
	Retries         int
	CacheDir        string
	CacheTTL        time.Duration
	Mirrors         map[types.Ecosystem]string
	OnResult        func(types.ResolutionResult)
}

func NewService(cfg Config) Service {
	return Service{
		HTTP:      adapters.NewHTTPClientAdapter(cfg.TimeoutSec, cfg.Retries, 0),
		Validator: adapters.NewURLValidatorAdapter(cfg.TimeoutSec),
		Executor:  adapters.NewSubprocessExecutorAdapter(cfg.TimeoutSec),
		Cache:     adapters.NewFileCacheAdapter(cfg.CacheDir, cfg.CacheTTL, 0),
	}
}

// engine assembles the resolution engine from the service's ports and
// the per-invocation config.
func (s Service) engine(cfg Config) core.Engine {
	registry := handlers.NewRegistry(s.HTTP, handlers.Options{Mirrors: cfg.Mirrors})
	return core.NewEngine(registry, s.Validator, s.Executor, s.Cache, core.EngineOptions{
		Validate:    cfg.Validate,
		Concurrency: cfg.Concurrency,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		OnResult:    cfg.OnResult,
	})
}
