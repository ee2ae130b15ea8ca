// Package genericsig recovers generic parameter declarations and their
// constraints from a pair of matched textual generic signatures.
package genericsig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed generic signature")

// Conformance is a constraint on a generic parameter. It is either a
// *ProtocolConformance or an *AssociatedTypeConformance.
type Conformance interface {
	// Target is the canonical name of the constrained parameter.
	Target() string
	isConformance()
}

// ProtocolConformance requires TargetType to implement ProtocolName (X : P).
type ProtocolConformance struct {
	TargetType   string
	ProtocolName string
}

func (c *ProtocolConformance) Target() string { return c.TargetType }
func (*ProtocolConformance) isConformance() {}

func (c *ProtocolConformance) String() string {
	return c.TargetType + " : " + c.ProtocolName
}

// AssociatedTypeConformance fixes the associated type AssociatedTypeName of
// TargetType to ProtocolName (X.A == T).
type AssociatedTypeConformance struct {
	TargetType         string
	ProtocolName       string
	AssociatedTypeName string
}

func (c *AssociatedTypeConformance) Target() string { return c.TargetType }
func (*AssociatedTypeConformance) isConformance() {}

func (c *AssociatedTypeConformance) String() string {
	return c.TargetType + "." + c.AssociatedTypeName + " == " + c.ProtocolName
}

// GenericArgumentDecl is one generic parameter with its constraints in the
// order they were written.
type GenericArgumentDecl struct {
	Name        string
	SugaredName string
	Constraints []Conformance
}

// Parse pairs the parameters of canonical and sugared positionally and attaches
// every where-clause requirement of canonical to the parameter it targets.
//
// An empty signature on either side yields an empty list.
func Parse(canonical, sugared string) ([]GenericArgumentDecl, error) {
	canonical = strings.TrimSpace(canonical)
	sugared = strings.TrimSpace(sugared)
	if canonical == "" || sugared == "" {
		return []GenericArgumentDecl{}, nil
	}

	cParams, cClauses, err := split(canonical)
	if err != nil {
		return nil, err
	}
	sParams, sClauses, err := split(sugared)
	if err != nil {
		return nil, err
	}
	if len(cParams) != len(sParams) {
		return nil, fmt.Errorf("%w: %d canonical parameters but %d sugared parameters", ErrMalformed, len(cParams), len(sParams))
	}

	decls := make([]GenericArgumentDecl, len(cParams))
	byName := make(map[string]int, len(cParams))
	for i := range cParams {
		decls[i] = GenericArgumentDecl{
			Name:        cParams[i],
			SugaredName: sParams[i],
			Constraints: []Conformance{},
		}
		byName[cParams[i]] = i
	}

	for _, clause := range cClauses {
		c, err := parseClause(clause)
		if err != nil {
			return nil, err
		}
		idx, ok := byName[c.Target()]
		if !ok {
			return nil, fmt.Errorf("%w: requirement %q names unknown parameter %q", ErrMalformed, clause, c.Target())
		}
		decls[idx].Constraints = append(decls[idx].Constraints, c)
	}
	// the sugared requirements only have to be well formed
	for _, clause := range sClauses {
		if _, err := parseClause(clause); err != nil {
			return nil, err
		}
	}
	return decls, nil
}

// split breaks `<p, q where r, s>` into its parameter names and requirement clauses.
func split(sig string) ([]string, []string, error) {
	if len(sig) < 2 || sig[0] != '<' || sig[len(sig)-1] != '>' {
		return nil, nil, fmt.Errorf("%w: %q is not enclosed in angle brackets", ErrMalformed, sig)
	}
	body := sig[1 : len(sig)-1]
	paramPart, clausePart := body, ""
	hasWhere := false
	if idx := indexTopLevelWord(body, "where"); idx >= 0 {
		paramPart, clausePart = body[:idx], body[idx+len("where"):]
		hasWhere = true
	}

	params, err := splitTopLevel(paramPart)
	if err != nil {
		return nil, nil, fmt.Errorf("%w in %q", err, sig)
	}
	seen := set.New[string](len(params))
	for _, p := range params {
		if p == "" || strings.ContainsAny(p, " :<>(),") {
			return nil, nil, fmt.Errorf("%w: invalid parameter name %q in %q", ErrMalformed, p, sig)
		}
		if !seen.Insert(p) {
			return nil, nil, fmt.Errorf("%w: duplicate parameter %q in %q", ErrMalformed, p, sig)
		}
	}

	var clauses []string
	if hasWhere {
		if clauses, err = splitTopLevel(clausePart); err != nil {
			return nil, nil, fmt.Errorf("%w in %q", err, sig)
		}
		if len(clauses) == 0 {
			return nil, nil, fmt.Errorf("%w: empty where clause in %q", ErrMalformed, sig)
		}
	}
	return params, clauses, nil
}

func parseClause(clause string) (Conformance, error) {
	if lhs, rhs, ok := cutTopLevel(clause, "=="); ok {
		target, assoc, dotted := strings.Cut(lhs, ".")
		if !dotted || target == "" || assoc == "" || rhs == "" {
			return nil, fmt.Errorf("%w: unsupported same-type requirement %q", ErrMalformed, clause)
		}
		return &AssociatedTypeConformance{
			TargetType:         target,
			ProtocolName:       rhs,
			AssociatedTypeName: assoc,
		}, nil
	}
	if lhs, rhs, ok := cutTopLevel(clause, ":"); ok {
		if lhs == "" || rhs == "" || strings.Contains(lhs, ".") {
			return nil, fmt.Errorf("%w: unsupported conformance requirement %q", ErrMalformed, clause)
		}
		return &ProtocolConformance{TargetType: lhs, ProtocolName: rhs}, nil
	}
	return nil, fmt.Errorf("%w: unknown requirement shape %q", ErrMalformed, clause)
}

// splitTopLevel splits s on commas outside of any bracket pair and trims each
// piece. An all-blank s yields no pieces.
func splitTopLevel(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			fallthrough
		case ')', ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q", ErrMalformed, s[i])
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unclosed bracket", ErrMalformed)
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts, nil
}

// cutTopLevel cuts s around the first occurrence of sep outside brackets.
func cutTopLevel(s, sep string) (before, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
			continue
		case '>':
			if i == 0 || s[i-1] != '-' {
				depth--
				continue
			}
		case ')', ']':
			depth--
			continue
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
		}
	}
	return "", "", false
}

// indexTopLevelWord finds word delimited by whitespace outside brackets.
func indexTopLevelWord(s, word string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>':
			if i == 0 || s[i-1] != '-' {
				depth--
			}
		case ')', ']':
			depth--
		}
		if depth != 0 || !strings.HasPrefix(s[i:], word) {
			continue
		}
		before := i == 0 || s[i-1] == ' '
		after := i+len(word) == len(s) || s[i+len(word)] == ' '
		if before && after {
			return i
		}
	}
	return -1
}
