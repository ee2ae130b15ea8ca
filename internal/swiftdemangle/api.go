package swiftdemangle

import (
	"fmt"
	"regexp"
	"strings"
)

var mangledTokenPattern = regexp.MustCompile(`_?\$[sSe][A-Za-z0-9_$]+`)

// IsSwiftSymbol reports whether symbol carries a Swift 5 mangling prefix.
func IsSwiftSymbol(symbol string) bool {
	_, ok := stripSymbolPrefix(symbol)
	return ok
}

// DemangleSymbol parses a mangled symbol such as "$s4main3fooyyF" and returns its
// global node.
func DemangleSymbol(mangled string) (*Node, error) {
	payload, ok := stripSymbolPrefix(mangled)
	if !ok {
		return nil, fmt.Errorf("%q is not a swift symbol", mangled)
	}
	node, err := newParser([]byte(payload)).parseSymbol()
	if err != nil {
		return nil, fmt.Errorf("failed to demangle %q: %w", mangled, err)
	}
	return node, nil
}

// DemangleType parses a bare type mangling such as "SaySiG".
func DemangleType(mangled string) (*Node, error) {
	clean := strings.TrimPrefix(mangled, "_")
	if payload, ok := stripSymbolPrefix(clean); ok {
		clean = payload
	}
	node, err := newParser([]byte(clean)).parseType()
	if err != nil {
		return nil, fmt.Errorf("failed to demangle type %q: %w", mangled, err)
	}
	return node, nil
}

// Demangle returns the display text and node tree for a mangled symbol.
func Demangle(mangled string) (string, *Node, error) {
	node, err := DemangleSymbol(mangled)
	if err != nil {
		return "", nil, err
	}
	return Format(node), node, nil
}

// DemangleBlob replaces every mangled symbol found in blob with its demangled
// text, leaving tokens that fail to parse untouched.
func DemangleBlob(blob string) string {
	return mangledTokenPattern.ReplaceAllStringFunc(blob, func(token string) string {
		out, _, err := Demangle(token)
		if err != nil {
			return token
		}
		return out
	})
}
