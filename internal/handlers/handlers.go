// Package handlers contains the per-ecosystem resolution handlers and
// the immutable registry that maps ecosystem tags onto them.
package handlers

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

func isHTTPURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// firstURLLine returns the first stdout line that is a bare URL, the
// shape `npm view ... dist.tarball` and friends print.
func firstURLLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if isHTTPURL(trimmed) {
			return trimmed
		}
	}
	return ""
}

func missingQualifierError(key string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("missing required qualifier: %s", key))
}

func baseOr(override string, fallback string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(override), "/")
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
