// Package demangle renders Swift symbols and type manglings as readable text for
// tools and diagnostics.
package demangle

import (
	"strings"

	swiftdemangle "github.com/blacktop/go-swiftbind/internal/swiftdemangle"
)

var methodPrefixes = []string{"func ", "method ", "getter ", "setter ", "modify ", "init "}

// NormalizeIdentifier returns a best-effort demangled representation of the input string.
func NormalizeIdentifier(name string) string {
	if demangled, ok := TryNormalizeIdentifier(name); ok {
		return demangled
	}
	return name
}

// TryNormalizeIdentifier attempts to demangle the provided identifier, returning the demangled form and a success flag.
func TryNormalizeIdentifier(name string) (string, bool) {
	for _, pref := range methodPrefixes {
		if strings.HasPrefix(name, pref) {
			if demangled, ok := demangleCandidate(strings.TrimSpace(name[len(pref):])); ok {
				return pref + demangled, true
			}
		}
	}
	return demangleCandidate(name)
}

// Symbol demangles a full symbol such as "$s4main3fooyyF".
func Symbol(symbol string) (string, error) {
	text, _, err := swiftdemangle.Demangle(symbol)
	return text, err
}

// Type demangles a bare type mangling such as "SaySiG".
func Type(mangled string) (string, error) {
	node, err := swiftdemangle.DemangleType(mangled)
	if err != nil {
		return "", err
	}
	return swiftdemangle.Format(node), nil
}

// Blob demangles every symbol embedded in free-form text.
func Blob(text string) string {
	return swiftdemangle.DemangleBlob(text)
}

func demangleCandidate(candidate string) (string, bool) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return "", false
	}
	if swiftdemangle.IsSwiftSymbol(trimmed) {
		if text, err := Symbol(trimmed); err == nil {
			return text, true
		}
	}
	if text, err := Type(trimmed); err == nil {
		return text, true
	}
	return "", false
}
