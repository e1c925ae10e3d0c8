package core

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"purl2src/internal/types"
)

// ParsePurl parses a PURL string of the form
//
//	pkg:<type>/[<namespace>/]<name>[@<version>][?<qualifiers>][#<subpath>]
//
// Percent-decoding is applied per component after the delimiters are
// located, so encoded "/" and "@" inside a segment are never mistaken
// for structure. Unknown ecosystem tags fail here; they are never
// routed to a default handler.
func ParsePurl(raw string) (types.Purl, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.Purl{}, parseError("purl is empty", nil)
	}
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "pkg:") {
		return types.Purl{}, parseError("purl must use the pkg: scheme", nil)
	}
	rest := strings.TrimPrefix(trimmed[len("pkg:"):], "//")
	rest = strings.TrimLeft(rest, "/")

	rest, subpath, err := splitSubpath(rest)
	if err != nil {
		return types.Purl{}, err
	}
	rest, qualifiers, err := splitQualifiers(rest)
	if err != nil {
		return types.Purl{}, err
	}

	typeTag, remainder, found := strings.Cut(rest, "/")
	if !found || strings.TrimSpace(remainder) == "" {
		return types.Purl{}, parseError("purl name is missing", nil)
	}
	ecosystem, ok := types.ParseEcosystem(typeTag)
	if !ok {
		return types.Purl{}, parseError(fmt.Sprintf("unknown ecosystem: %s", strings.ToLower(typeTag)), nil)
	}

	remainder, version, err := splitVersion(remainder)
	if err != nil {
		return types.Purl{}, err
	}

	namespace, name, err := splitName(remainder)
	if err != nil {
		return types.Purl{}, err
	}

	return types.Purl{
		Ecosystem:  ecosystem,
		Namespace:  namespace,
		Name:       name,
		Version:    version,
		Qualifiers: qualifiers,
		Subpath:    subpath,
	}, nil
}

func splitSubpath(rest string) (string, string, error) {
	before, after, found := strings.Cut(rest, "#")
	if !found {
		return rest, "", nil
	}
	segments := strings.Split(strings.Trim(after, "/"), "/")
	decoded := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		value, err := url.PathUnescape(segment)
		if err != nil {
			return "", "", parseError("malformed percent-encoding in subpath", err)
		}
		decoded = append(decoded, value)
	}
	return before, strings.Join(decoded, "/"), nil
}

func splitQualifiers(rest string) (string, map[string]string, error) {
	before, after, found := strings.Cut(rest, "?")
	if !found {
		return rest, nil, nil
	}
	qualifiers := map[string]string{}
	for _, pair := range strings.Split(after, "&") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return "", nil, parseError(fmt.Sprintf("malformed qualifier: %s", pair), nil)
		}
		key = strings.ToLower(key)
		if _, exists := qualifiers[key]; exists {
			return "", nil, parseError(fmt.Sprintf("duplicate qualifier key: %s", key), nil)
		}
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return "", nil, parseError(fmt.Sprintf("malformed percent-encoding in qualifier %s", key), err)
		}
		if decoded == "" {
			continue
		}
		qualifiers[key] = decoded
	}
	if len(qualifiers) == 0 {
		qualifiers = nil
	}
	return before, qualifiers, nil
}

// splitVersion separates the version from the namespace/name remainder.
// The split point is the last "@"; an "@" at position zero is a scoped
// package marker, not a version delimiter.
func splitVersion(remainder string) (string, string, error) {
	idx := strings.LastIndex(remainder, "@")
	if idx <= 0 {
		return remainder, "", nil
	}
	version, err := url.PathUnescape(remainder[idx+1:])
	if err != nil {
		return "", "", parseError("malformed percent-encoding in version", err)
	}
	return remainder[:idx], version, nil
}

// splitName separates namespace and name on the last "/". Multi-segment
// namespaces (Maven groups rendered with slashes, golang module paths
// like github.com/gorilla) stay joined as a single namespace value.
func splitName(remainder string) (string, string, error) {
	segments := strings.Split(strings.Trim(remainder, "/"), "/")
	decoded := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		value, err := url.PathUnescape(segment)
		if err != nil {
			return "", "", parseError("malformed percent-encoding in name", err)
		}
		decoded = append(decoded, value)
	}
	if len(decoded) == 0 || decoded[len(decoded)-1] == "" {
		return "", "", parseError("purl name is missing", nil)
	}
	name := decoded[len(decoded)-1]
	namespace := strings.Join(decoded[:len(decoded)-1], "/")
	return namespace, name, nil
}

func parseError(msg string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return builder
}
