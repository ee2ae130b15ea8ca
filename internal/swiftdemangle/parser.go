package swiftdemangle

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxIdentifierWords = 26
	maxRepeatCount     = 2048
)

type parser struct {
	data      []byte
	pos       int
	subst     []*Node
	words     []string
	nodeStack []*Node
}

func newParser(data []byte) *parser {
	return &parser{
		data:  data,
		words: make([]string, 0, maxIdentifierWords),
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.data)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.data[p.pos]
}

func (p *parser) consume() byte {
	if p.eof() {
		return 0
	}
	b := p.data[p.pos]
	p.pos++
	return b
}

func (p *parser) nextIf(b byte) bool {
	if p.eof() || p.data[p.pos] != b {
		return false
	}
	p.pos++
	return true
}

func (p *parser) expect(b byte) error {
	if p.eof() {
		return fmt.Errorf("unexpected end of mangled name, expected %q", b)
	}
	if p.data[p.pos] != b {
		return fmt.Errorf("unexpected character %q at position %d, expected %q", p.data[p.pos], p.pos, b)
	}
	p.pos++
	return nil
}

func (p *parser) pushNode(n *Node) {
	p.nodeStack = append(p.nodeStack, n)
}

func (p *parser) popNode() *Node {
	if len(p.nodeStack) == 0 {
		return nil
	}
	n := p.nodeStack[len(p.nodeStack)-1]
	p.nodeStack = p.nodeStack[:len(p.nodeStack)-1]
	return n
}

func (p *parser) peekNode() *Node {
	if len(p.nodeStack) == 0 {
		return nil
	}
	return p.nodeStack[len(p.nodeStack)-1]
}

// popNodeIf pops the top node only when pred accepts it.
func (p *parser) popNodeIf(pred func(*Node) bool) *Node {
	if top := p.peekNode(); top != nil && pred(top) {
		return p.popNode()
	}
	return nil
}

func (p *parser) popNodeKind(kind NodeKind) *Node {
	return p.popNodeIf(func(n *Node) bool { return n.Kind == kind })
}

func (p *parser) popType() *Node {
	return p.popNodeIf((*Node).IsType)
}

func (p *parser) popTypeOrErr(what string) (*Node, error) {
	t := p.popType()
	if t == nil {
		return nil, fmt.Errorf("expected type for %s at position %d", what, p.pos)
	}
	return t, nil
}

// popProtocol accepts either a protocol type (`7GreeterP`, `SQ`) or the bare
// context and name that conformances and requirements mangle (`AA7Greeter`).
func (p *parser) popProtocol() (*Node, error) {
	if n := p.popNodeKind(KindProtocol); n != nil {
		return n, nil
	}
	name := p.popNodeIf(isDeclName)
	if name == nil {
		return nil, fmt.Errorf("expected protocol at position %d", p.pos)
	}
	ctx, err := p.popContext()
	if err != nil {
		return nil, fmt.Errorf("expected protocol context: %w", err)
	}
	proto := NewNode(KindProtocol, name.Text)
	proto.Append(ctx, name)
	return proto, nil
}

func (p *parser) popModule() (*Node, error) {
	top := p.peekNode()
	if top == nil {
		return nil, fmt.Errorf("expected module at position %d", p.pos)
	}
	switch top.Kind {
	case KindModule:
		return p.popNode(), nil
	case KindIdentifier:
		p.popNode()
		return NewNode(KindModule, top.Text), nil
	}
	return nil, fmt.Errorf("expected module at position %d, found %s", p.pos, top.Kind)
}

func (p *parser) popContext() (*Node, error) {
	top := p.peekNode()
	if top != nil && top.Kind == KindIdentifier {
		return p.popModule()
	}
	if isContext(top) {
		return p.popNode(), nil
	}
	if top == nil {
		return nil, fmt.Errorf("expected context at position %d", p.pos)
	}
	return nil, fmt.Errorf("expected context at position %d, found %s", p.pos, top.Kind)
}

func (p *parser) popEntity() (*Node, error) {
	if n := p.popNodeIf((*Node).IsEntity); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("expected entity at position %d", p.pos)
}

// readNatural reads a decimal number, returning ok=false when no digit is present.
func (p *parser) readNatural() (int, bool, error) {
	if p.eof() || !isDigit(p.peek()) {
		return 0, false, nil
	}
	total := 0
	for !p.eof() && isDigit(p.peek()) {
		total = total*10 + int(p.consume()-'0')
		if total > 1<<24 {
			return 0, false, fmt.Errorf("number too large at position %d", p.pos)
		}
	}
	return total, true, nil
}

// readIndex decodes an INDEX production: '_' is zero and NATURAL '_' is NATURAL+1.
func (p *parser) readIndex() (int, error) {
	if p.nextIf('_') {
		return 0, nil
	}
	n, ok, err := p.readNatural()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("expected index at position %d", p.pos)
	}
	if err := p.expect('_'); err != nil {
		return 0, err
	}
	return n + 1, nil
}

func (p *parser) readIdentifier() (*Node, error) {
	if p.eof() || !isDigit(p.peek()) {
		return nil, fmt.Errorf("expected identifier at position %d", p.pos)
	}
	hasWordSubsts := false
	isPunycode := false
	if p.nextIf('0') {
		if p.nextIf('0') {
			isPunycode = true
		} else {
			hasWordSubsts = true
		}
	}

	var out strings.Builder
	for {
		for hasWordSubsts && !p.eof() && isLetter(p.peek()) {
			c := p.consume()
			idx := 0
			if isLowerLetter(c) {
				idx = int(c - 'a')
			} else {
				idx = int(c - 'A')
				hasWordSubsts = false
			}
			if idx >= len(p.words) {
				return nil, fmt.Errorf("word substitution index %d out of range (have %d words)", idx, len(p.words))
			}
			debugf("readIdentifier: word[%d]=%q", idx, p.words[idx])
			out.WriteString(p.words[idx])
		}
		if p.nextIf('0') {
			break
		}
		length, ok, err := p.readNatural()
		if err != nil {
			return nil, err
		}
		if !ok || length <= 0 {
			return nil, fmt.Errorf("identifier length must be >0 at position %d", p.pos)
		}
		if isPunycode {
			p.nextIf('_')
		}
		if p.pos+length > len(p.data) {
			return nil, fmt.Errorf("identifier exceeds input length")
		}
		chunk := string(p.data[p.pos : p.pos+length])
		p.pos += length
		if isPunycode {
			decoded, err := decodeSwiftPunycode(chunk)
			if err != nil {
				return nil, err
			}
			out.WriteString(decoded)
		} else {
			out.WriteString(chunk)
			p.recordWordsFromLiteral(chunk)
		}
		if !hasWordSubsts {
			break
		}
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("empty identifier")
	}
	ident := NewNode(KindIdentifier, out.String())
	p.pushSubstitution(ident)
	return ident, nil
}

func (p *parser) recordWordsFromLiteral(lit string) {
	wordStart := -1
	for i := 0; i <= len(lit); i++ {
		var curr byte
		if i < len(lit) {
			curr = lit[i]
		}
		if wordStart >= 0 && isWordEndChar(curr, lit[i-1]) {
			if i-wordStart >= 2 && len(p.words) < maxIdentifierWords {
				p.words = append(p.words, lit[wordStart:i])
			}
			wordStart = -1
		}
		if wordStart < 0 && isWordStartChar(curr) {
			wordStart = i
		}
	}
}

const (
	punycodeBase        = 36
	punycodeTmin        = 1
	punycodeTmax        = 26
	punycodeSkew        = 38
	punycodeDamp        = 700
	punycodeInitialBias = 72
	punycodeInitialN    = 128
	punycodeDelimiter   = '_'
)

// decodeSwiftPunycode decodes Swift's punycode variant, which uses '_' as the
// delimiter and 'A'-'J' for the digits 26-35.
func decodeSwiftPunycode(input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("empty punycode payload")
	}
	n := punycodeInitialN
	i := 0
	bias := punycodeInitialBias
	var output []rune
	pos := 0
	if idx := strings.LastIndexByte(input, punycodeDelimiter); idx >= 0 {
		for _, r := range input[:idx] {
			if r >= 0x80 {
				return "", fmt.Errorf("non-basic code point %q in punycode prefix", r)
			}
			output = append(output, r)
		}
		pos = idx + 1
	}
	for pos < len(input) {
		oldi := i
		w := 1
		for k := punycodeBase; ; k += punycodeBase {
			if pos >= len(input) {
				return "", fmt.Errorf("truncated punycode input")
			}
			digit, ok := decodePunycodeDigit(input[pos])
			if !ok {
				return "", fmt.Errorf("invalid punycode digit %q", input[pos])
			}
			pos++
			if digit > (1<<31-1-i)/w {
				return "", fmt.Errorf("punycode overflow")
			}
			i += digit * w
			t := k - bias
			if k <= bias {
				t = punycodeTmin
			} else if k >= bias+punycodeTmax {
				t = punycodeTmax
			}
			if digit < t {
				break
			}
			w *= punycodeBase - t
		}
		bias = adaptPunycodeBias(i-oldi, len(output)+1, oldi == 0)
		n += i / (len(output) + 1)
		i %= len(output) + 1
		if n < 0x80 {
			return "", fmt.Errorf("invalid punycode code point %d", n)
		}
		r := rune(n)
		// symbol characters that are not valid identifier characters are
		// shifted into this surrogate window by the mangler
		if r >= 0xD800 && r < 0xD880 {
			r -= 0xD800
		}
		output = append(output, 0)
		copy(output[i+1:], output[i:])
		output[i] = r
		i++
	}
	var sb strings.Builder
	for _, r := range output {
		if !utf8.ValidRune(r) {
			return "", fmt.Errorf("invalid punycode code point %d", r)
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func decodePunycodeDigit(b byte) (int, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return int(b - 'a'), true
	case b >= 'A' && b <= 'J':
		return int(b-'A') + 26, true
	default:
		return 0, false
	}
}

func adaptPunycodeBias(delta, numPoints int, firstTime bool) int {
	if firstTime {
		delta /= punycodeDamp
	} else {
		delta /= 2
	}
	delta += delta / numPoints
	k := 0
	for delta > ((punycodeBase-punycodeTmin)*punycodeTmax)/2 {
		delta /= punycodeBase - punycodeTmin
		k += punycodeBase
	}
	return k + (((punycodeBase - punycodeTmin + 1) * delta) / (delta + punycodeSkew))
}

func (p *parser) pushSubstitution(n *Node) {
	if n == nil {
		return
	}
	debugf("pushSubstitution[%d]: %s %q", len(p.subst), n.Kind, n.Text)
	p.subst = append(p.subst, n)
}

func (p *parser) lookupSubstitution(index int) (*Node, error) {
	if index < 0 || index >= len(p.subst) {
		return nil, fmt.Errorf("substitution index %d out of range (have %d)", index, len(p.subst))
	}
	return p.subst[index], nil
}

func isLowerLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func isUpperLetter(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isLetter(b byte) bool {
	return isLowerLetter(b) || isUpperLetter(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWordStartChar(b byte) bool {
	return !isDigit(b) && b != '_' && b != 0
}

func isWordEndChar(next, prev byte) bool {
	if next == '_' || next == 0 {
		return true
	}
	return !isUpperLetter(prev) && isUpperLetter(next)
}
