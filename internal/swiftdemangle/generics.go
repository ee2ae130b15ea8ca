package swiftdemangle

import (
	"fmt"
	"strings"
)

// GenericParamName returns the sugared spelling of a generic parameter: A, B, ...
// Z, BA, ... with the depth appended for nested parameters.
func GenericParamName(depth, index uint64) string {
	var name []byte
	for {
		name = append(name, byte('A'+index%26))
		index /= 26
		if index == 0 {
			break
		}
	}
	if depth != 0 {
		name = append(name, fmt.Sprint(depth)...)
	}
	return string(name)
}

// CanonicalParamName returns the τ_depth_index spelling of a generic parameter.
func CanonicalParamName(depth, index uint64) string {
	return fmt.Sprintf("τ_%d_%d", depth, index)
}

func (pr printer) paramName(depth, index uint64) string {
	if pr.sugar {
		return GenericParamName(depth, index)
	}
	return CanonicalParamName(depth, index)
}

// SignatureParams lists the (depth, index) pairs a generic signature introduces
// when its first parameter level sits at baseDepth.
func SignatureParams(sig *Node, baseDepth uint64) [][2]uint64 {
	var params [][2]uint64
	level := baseDepth
	for _, child := range sig.Children {
		if child.Kind != KindDependentGenericCount {
			continue
		}
		for i := uint64(0); i < child.Index; i++ {
			params = append(params, [2]uint64{level, i})
		}
		level++
	}
	return params
}

// Requirements returns the requirement nodes of a generic signature.
func Requirements(sig *Node) []*Node {
	var reqs []*Node
	for _, child := range sig.Children {
		if isRequirement(child) {
			reqs = append(reqs, child)
		}
	}
	return reqs
}

func (pr printer) signature(sig *Node, baseDepth uint64) string {
	if sig == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('<')
	for i, param := range SignatureParams(sig, baseDepth) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pr.paramName(param[0], param[1]))
	}
	if reqs := Requirements(sig); len(reqs) > 0 {
		sb.WriteString(" where ")
		for i, req := range reqs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(pr.format(req))
		}
	}
	sb.WriteByte('>')
	return sb.String()
}

// GenericSignatureText renders sig in the textual form used by the binding
// tools, for example "<τ_0_0 where τ_0_0 : Swift.Equatable>". The sugared form
// uses A, B, ... for the parameter names. refs are the nodes the signature
// applies to and are used to infer the depth of its first parameter level.
func GenericSignatureText(sig *Node, sugared bool, refs ...*Node) string {
	pr := canonicalPrinter
	if sugared {
		pr = sugaredPrinter
	}
	return pr.signature(sig, inferBaseDepth(sig, refs...))
}

// MaxGenericDepth returns the deepest generic parameter depth referenced in the
// given trees, or -1 when none is referenced.
func MaxGenericDepth(nodes ...*Node) int {
	deepest := -1
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if depth, _, ok := GenericParamPosition(n); ok {
			if int(depth) > deepest {
				deepest = int(depth)
			}
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return deepest
}

// inferBaseDepth works out the depth of a signature's first level. Signatures on
// members of generic types only list their own levels, while references inside
// them use absolute depths.
func inferBaseDepth(sig *Node, refs ...*Node) uint64 {
	if sig == nil {
		return 0
	}
	levels := 0
	for _, child := range sig.Children {
		if child.Kind == KindDependentGenericCount {
			levels++
		}
	}
	deepest := MaxGenericDepth(append([]*Node{sig}, refs...)...)
	if base := deepest - (levels - 1); levels > 0 && base > 0 {
		return uint64(base)
	}
	return 0
}
