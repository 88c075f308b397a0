package license

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/EmundoT/license-auditor/internal/types"
)

type tokenKind int

const (
	tokOperand tokenKind = iota
	tokAnd
	tokOr
	tokWith
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits an expression into operators, parentheses and operands.
// Operands may span several words ("Apache Software License"); "/" and "," act as OR.
func tokenize(expr string) []token {
	var tokens []token
	var words []string

	flush := func() {
		if len(words) > 0 {
			tokens = append(tokens, token{kind: tokOperand, text: strings.Join(words, " ")})
			words = nil
		}
	}

	for _, field := range splitPunct(expr) {
		switch strings.ToUpper(field) {
		case "AND", "&":
			flush()
			tokens = append(tokens, token{kind: tokAnd})
		case "OR", "/", ",", "|":
			flush()
			tokens = append(tokens, token{kind: tokOr})
		case "WITH":
			flush()
			tokens = append(tokens, token{kind: tokWith})
		case "(":
			flush()
			tokens = append(tokens, token{kind: tokOpen})
		case ")":
			flush()
			tokens = append(tokens, token{kind: tokClose})
		default:
			words = append(words, field)
		}
	}
	flush()
	return tokens
}

// splitPunct splits on whitespace and isolates the punctuation tokens.
func splitPunct(expr string) []string {
	var fields []string
	var cur strings.Builder
	emit := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case unicode.IsSpace(r):
			emit()
		case r == '(' || r == ')' || r == '/' || r == ',' || r == '&' || r == '|':
			emit()
			fields = append(fields, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	emit()
	return fields
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

// parseExpression builds a tree from an SPDX-style expression.
//
//	expr    = and { OR and }
//	and     = with { AND with }
//	with    = primary [ WITH operand ]
//	primary = "(" expr ")" | operand
func parseExpression(expr string) (*types.LicenseNode, error) {
	p := &parser{tokens: tokenize(expr)}
	if len(p.tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("unexpected token %q at position %d", tok.text, p.pos)
	}
	return node, nil
}

func (p *parser) parseOr() (*types.LicenseNode, error) {
	return p.parseBinary(types.OpOr, tokOr, p.parseAnd)
}

func (p *parser) parseAnd() (*types.LicenseNode, error) {
	return p.parseBinary(types.OpAnd, tokAnd, p.parseWith)
}

func (p *parser) parseBinary(op types.LicenseOp, kind tokenKind, next func() (*types.LicenseNode, error)) (*types.LicenseNode, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	children := []*types.LicenseNode{first}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != kind {
			break
		}
		p.pos++
		child, err := next()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &types.LicenseNode{Op: op, Children: children}, nil
}

func (p *parser) parseWith() (*types.LicenseNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	tok, ok := p.peek()
	if !ok || tok.kind != tokWith {
		return node, nil
	}
	p.pos++
	exc, ok := p.peek()
	if !ok || exc.kind != tokOperand {
		return nil, fmt.Errorf("WITH must be followed by an exception identifier")
	}
	p.pos++
	if node.Op != types.OpLeaf {
		return nil, fmt.Errorf("WITH applies to a single license")
	}
	node.Raw = node.Raw + " WITH " + exc.text
	return node, nil
}

func (p *parser) parsePrimary() (*types.LicenseNode, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	switch tok.kind {
	case tokOpen:
		p.pos++
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokClose {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return node, nil
	case tokOperand:
		p.pos++
		return &types.LicenseNode{Raw: tok.text}, nil
	default:
		return nil, fmt.Errorf("unexpected operator at position %d", p.pos)
	}
}

// render formats a canonical tree. Unknown leaves render as their raw text.
func render(n *types.LicenseNode) string {
	if n.Op == types.OpLeaf {
		if n.ID != "" {
			return n.ID
		}
		return n.Raw
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		s := render(c)
		if c.Op != types.OpLeaf && c.Op != n.Op {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " "+string(n.Op)+" ")
}
