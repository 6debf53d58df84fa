package expr

import (
	"strings"
)

type tokenKind int

const (
	tokenOperand tokenKind = iota
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokenOperand:
		return "operand"
	case tokenAnd:
		return "and"
	case tokenOr:
		return "or"
	case tokenNot:
		return "not"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	default:
		return "?"
	}
}

type token struct {
	kind tokenKind
	raw  string
	pos  int
}

var keywords = map[string]tokenKind{
	"and": tokenAnd,
	"or":  tokenOr,
	"not": tokenNot,
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// isBreak reports whether ch terminates an operand.
func isBreak(ch byte) bool {
	switch ch {
	case '(', ')', '[', ']', '!', '+', '&', '|':
		return true
	}
	return isSpace(ch)
}

// tokenize splits input into operator and operand tokens. Operands are
// lower-cased. An opening parenthesis glued to operand text starts an
// argument list that belongs to the operand, as in `control.isvisible(50)`.
func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	next := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	emit := func(kind tokenKind, raw string, pos int) {
		tokens = append(tokens, token{kind: kind, raw: raw, pos: pos})
	}

	for i < len(input) {
		ch := next()
		if isSpace(ch) {
			i++
			continue
		}

		start := i
		switch ch {
		case '(', '[':
			i++
			emit(tokenLParen, string(ch), start)
			continue
		case ')', ']':
			i++
			emit(tokenRParen, string(ch), start)
			continue
		case '!':
			i++
			emit(tokenNot, "!", start)
			continue
		case '+':
			i++
			emit(tokenAnd, "+", start)
			continue
		case '&':
			i++
			if next() == '&' {
				i++
			}
			emit(tokenAnd, input[start:i], start)
			continue
		case '|':
			i++
			if next() == '|' {
				i++
			}
			emit(tokenOr, input[start:i], start)
			continue
		}

		for i < len(input) {
			c := input[i]
			if c == '(' && i > start {
				if _, isKeyword := keywords[strings.ToLower(input[start:i])]; isKeyword {
					break
				}
				end, ok := closingParen(input, i)
				if !ok {
					return nil, &ParseError{
						Kind:       ErrSyntax,
						Expression: input,
						Pos:        i,
						Token:      input[start:],
						Msg:        "unterminated argument list",
					}
				}
				i = end + 1
				continue
			}
			if isBreak(c) {
				break
			}
			i++
		}

		raw := strings.ToLower(input[start:i])
		if kind, isKeyword := keywords[raw]; isKeyword {
			emit(kind, raw, start)
			continue
		}
		emit(tokenOperand, raw, start)
	}

	return tokens, nil
}

// closingParen returns the index of the parenthesis matching the one at open.
func closingParen(input string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(input); i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

// IsSingle reports whether text is a lone operand without any operators or
// grouping, in which case it can be resolved without building a tree.
func IsSingle(text string) bool {
	tokens, err := tokenize(text)
	if err != nil {
		return false
	}
	return len(tokens) == 1 && tokens[0].kind == tokenOperand
}
