package types

import (
	"net/url"
	"sort"
	"strings"
)

// Purl is a parsed Package URL. It is produced once by the parser and
// treated as read-only afterwards.
type Purl struct {
	Ecosystem  Ecosystem
	Namespace  string
	Name       string
	Version    string
	Qualifiers map[string]string
	Subpath    string
}

// ParseEcosystem maps a PURL type tag to a registered ecosystem.
// Unknown tags are rejected by the caller; there is no default handler.
func ParseEcosystem(value string) (Ecosystem, bool) {
	eco := Ecosystem(strings.ToLower(strings.TrimSpace(value)))
	switch eco {
	case EcosystemNpm, EcosystemPyPI, EcosystemCargo, EcosystemGem,
		EcosystemNuGet, EcosystemMaven, EcosystemGolang, EcosystemGitHub,
		EcosystemConda, EcosystemGeneric:
		return eco, true
	}
	return "", false
}

// Qualifier returns the named qualifier value, or "" when absent.
func (p Purl) Qualifier(key string) string {
	if p.Qualifiers == nil {
		return ""
	}
	return p.Qualifiers[key]
}

// String reconstructs a normalized PURL. Encoding is normalized per
// component, so the output is equivalent to, but not necessarily
// byte-identical with, the input it was parsed from.
func (p Purl) String() string {
	var b strings.Builder
	b.WriteString("pkg:")
	b.WriteString(string(p.Ecosystem))
	if p.Namespace != "" {
		for _, segment := range strings.Split(p.Namespace, "/") {
			b.WriteString("/")
			b.WriteString(escapeSegment(segment))
		}
	}
	b.WriteString("/")
	b.WriteString(escapeSegment(p.Name))
	if p.Version != "" {
		b.WriteString("@")
		b.WriteString(url.PathEscape(p.Version))
	}
	if len(p.Qualifiers) > 0 {
		keys := make([]string, 0, len(p.Qualifiers))
		for key := range p.Qualifiers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			if i == 0 {
				b.WriteString("?")
			} else {
				b.WriteString("&")
			}
			b.WriteString(key)
			b.WriteString("=")
			b.WriteString(url.QueryEscape(p.Qualifiers[key]))
		}
	}
	if p.Subpath != "" {
		b.WriteString("#")
		b.WriteString(p.Subpath)
	}
	return b.String()
}

// escapeSegment percent-encodes a single path segment while keeping the
// scoped-package "@" readable, matching common PURL renderings.
func escapeSegment(segment string) string {
	escaped := url.PathEscape(segment)
	return strings.ReplaceAll(escaped, "%40", "@")
}
