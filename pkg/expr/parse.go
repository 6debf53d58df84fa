package expr

import (
	"errors"
	"strings"

	"github.com/goliatone/go-condexpr/pkg/condition"
)

// operator values double as precedence: higher binds tighter.
type operator uint8

const (
	opLBracket operator = iota + 1
	opRBracket
	opOr
	opAnd
	opNot
)

// Parse compiles text into a Tree, resolving every operand through lookup.
//
// Supported syntax:
//   - AND: `+`, `&`, `&&`, `and`
//   - OR: `|`, `||`, `or`
//   - NOT: `!`, `not` (binds to the next operand or bracketed group)
//   - grouping: `(` `)` or `[` `]`
//
// NOT binds tighter than AND, which binds tighter than OR. Chains of the
// same operator are flattened into one group, and negated groups are
// rewritten with De Morgan so that only leaves carry negation.
//
// Failures are returned as *ParseError.
func Parse(text string, lookup condition.Lookup) (*Tree, error) {
	if lookup == nil {
		return nil, errors.New("expr: lookup is required")
	}

	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	p := &parser{
		input:         text,
		lookup:        lookup,
		expectOperand: true,
	}
	for _, tok := range tokens {
		if err := p.step(tok); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

// MustParse is like Parse but panics on error. Intended for fixed rules
// compiled during init.
func MustParse(text string, lookup condition.Lookup) *Tree {
	tree, err := Parse(text, lookup)
	if err != nil {
		panic(err)
	}
	return tree
}

// parser holds the transient state of a single compilation.
type parser struct {
	input  string
	lookup condition.Lookup

	ops   []operator
	nodes []*Node

	// invert is set while an odd number of NOT operators is pending.
	invert        bool
	itemDependent bool
	expectOperand bool
	// brackets holds the opening character of every unclosed group.
	brackets []byte
}

func (p *parser) step(tok token) error {
	switch tok.kind {
	case tokenOperand:
		if !p.expectOperand {
			return p.syntaxError(tok, "missing operator before operand")
		}
		info, ok := p.lookup.Lookup(tok.raw)
		if !ok {
			return &ParseError{
				Kind:       ErrUnknownCondition,
				Expression: p.input,
				Pos:        tok.pos,
				Token:      tok.raw,
			}
		}
		p.itemDependent = p.itemDependent || info.ItemDependent
		p.nodes = append(p.nodes, &Node{
			Kind:      KindLeaf,
			Condition: info.ID,
			Name:      tok.raw,
			Invert:    p.invert,
		})
		p.expectOperand = false
	case tokenNot:
		if !p.expectOperand {
			return p.syntaxError(tok, "misplaced not")
		}
		p.pushOperator(opNot)
	case tokenLParen:
		if !p.expectOperand {
			return p.syntaxError(tok, "missing operator before bracket")
		}
		p.brackets = append(p.brackets, tok.raw[0])
		p.pushOperator(opLBracket)
	case tokenRParen:
		if p.expectOperand {
			return p.syntaxError(tok, "missing operand")
		}
		if len(p.brackets) == 0 {
			return p.syntaxError(tok, "unmatched closing bracket")
		}
		if open := p.brackets[len(p.brackets)-1]; tok.raw[0] != closingBracket(open) {
			return p.syntaxError(tok, "mismatched bracket")
		}
		p.brackets = p.brackets[:len(p.brackets)-1]
		p.pushOperator(opRBracket)
	case tokenAnd, tokenOr:
		if p.expectOperand {
			return p.syntaxError(tok, "missing operand")
		}
		op := opAnd
		if tok.kind == tokenOr {
			op = opOr
		}
		p.pushOperator(op)
		p.expectOperand = true
	}
	return nil
}

func (p *parser) finish() (*Tree, error) {
	end := token{pos: len(p.input)}
	if p.expectOperand {
		if strings.TrimSpace(p.input) == "" {
			return nil, p.syntaxError(end, "empty expression")
		}
		return nil, p.syntaxError(end, "missing operand")
	}
	if len(p.brackets) > 0 {
		return nil, p.syntaxError(end, "unmatched opening bracket")
	}

	for len(p.ops) > 0 {
		p.popOperator()
	}
	if len(p.nodes) != 1 {
		return nil, p.syntaxError(end, "malformed expression")
	}
	return &Tree{Root: p.nodes[0], ItemDependent: p.itemDependent}, nil
}

func closingBracket(open byte) byte {
	if open == '[' {
		return ']'
	}
	return ')'
}

func (p *parser) pushOperator(op operator) {
	switch op {
	case opLBracket, opNot:
		// prefix operators never reduce what is already stacked
	case opRBracket:
		for p.ops[len(p.ops)-1] != opLBracket {
			p.popOperator()
		}
		p.ops = p.ops[:len(p.ops)-1]
		return
	default:
		for len(p.ops) > 0 && p.ops[len(p.ops)-1] >= op {
			p.popOperator()
		}
	}

	p.ops = append(p.ops, op)
	if op == opNot {
		p.invert = !p.invert
	}
}

func (p *parser) popOperator() {
	op := p.ops[len(p.ops)-1]
	p.ops = p.ops[:len(p.ops)-1]

	var kind Kind
	switch op {
	case opNot:
		p.invert = !p.invert
		return
	case opAnd:
		kind = KindAnd
	case opOr:
		kind = KindOr
	default:
		return
	}
	if p.invert {
		kind = kind.flip()
	}

	right := p.nodes[len(p.nodes)-1]
	left := p.nodes[len(p.nodes)-2]
	p.nodes = p.nodes[:len(p.nodes)-2]
	p.nodes = append(p.nodes, combine(kind, left, right))
}

// combine joins left and right under kind, reusing existing groups of the
// same kind so associative chains stay flat and keep left-to-right order.
func combine(kind Kind, left, right *Node) *Node {
	switch {
	case left.Kind == kind && right.Kind == kind:
		left.merge(right)
		return left
	case left.Kind == kind:
		left.addChild(right)
		return left
	case right.Kind == kind:
		right.prependChild(left)
		return right
	default:
		return &Node{Kind: kind, Children: []*Node{left, right}}
	}
}

func (p *parser) syntaxError(tok token, msg string) error {
	return &ParseError{
		Kind:       ErrSyntax,
		Expression: p.input,
		Pos:        tok.pos,
		Token:      tok.raw,
		Msg:        msg,
	}
}
