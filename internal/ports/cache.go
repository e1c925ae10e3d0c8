package ports

import "purl2src/internal/types"

// ResultCachePort memoizes terminal resolution results keyed by the
// normalized PURL string. Insert-once, read-many; implementations own
// their eviction policy.
type ResultCachePort interface {
	Get(purl string) (types.ResolutionResult, bool)
	Set(purl string, result types.ResolutionResult)
}
