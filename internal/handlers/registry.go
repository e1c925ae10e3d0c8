package handlers

import (
	"sort"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

// Registry holds one handler per ecosystem. It is populated once at
// construction and never mutated, so concurrent lookups need no lock.
type Registry struct {
	handlers map[types.Ecosystem]ports.Handler
}

// Options tunes registry construction. Mirrors overrides the default
// base URL per ecosystem, typically loaded from a mirrors file.
type Options struct {
	Mirrors map[types.Ecosystem]string
}

// NewRegistry builds the full handler set. HTTP-backed handlers share
// the given port.
func NewRegistry(http ports.HTTPPort, opts Options) Registry {
	mirror := func(eco types.Ecosystem) string { return opts.Mirrors[eco] }
	all := []ports.Handler{
		NewNpmHandler(http, mirror(types.EcosystemNpm)),
		NewPypiHandler(http, mirror(types.EcosystemPyPI)),
		NewCargoHandler(mirror(types.EcosystemCargo)),
		NewNugetHandler(mirror(types.EcosystemNuGet)),
		NewGithubHandler(http, mirror(types.EcosystemGitHub)),
		NewGenericHandler(),
		NewCondaHandler(mirror(types.EcosystemConda)),
		NewGolangHandler(http, mirror(types.EcosystemGolang)),
		NewGemHandler(http, mirror(types.EcosystemGem)),
		NewMavenHandler(mirror(types.EcosystemMaven)),
	}
	handlers := make(map[types.Ecosystem]ports.Handler, len(all))
	for _, h := range all {
		handlers[h.Ecosystem()] = h
	}
	return Registry{handlers: handlers}
}

// Handler returns the handler for the ecosystem, if registered.
func (r Registry) Handler(eco types.Ecosystem) (ports.Handler, bool) {
	h, ok := r.handlers[eco]
	return h, ok
}

// Ecosystems lists the registered ecosystems in lexical order.
func (r Registry) Ecosystems() []types.Ecosystem {
	out := make([]types.Ecosystem, 0, len(r.handlers))
	for eco := range r.handlers {
		out = append(out, eco)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
