package infobool

import (
	"errors"
	"strings"

	"github.com/goliatone/go-condexpr/pkg/condition"
	"github.com/goliatone/go-condexpr/pkg/expr"
)

// Condition is a rule made of exactly one named condition. It resolves the
// condition directly, without building a tree.
type Condition struct {
	cache
	info     condition.Info
	resolver condition.Resolver
	fallback bool
	err      error
}

var _ Bool = (*Condition)(nil)

// NewCondition builds a single-condition rule. The name is looked up once.
// A name that is unknown, or text that is not a lone operand, yields a rule
// that reports the problem through Err and always evaluates to the fallback.
func NewCondition(text string, context int, lookup condition.Lookup, resolver condition.Resolver, opts ...Option) *Condition {
	cfg := newConfig(opts)
	c := &Condition{
		cache:    cache{context: context, source: text, value: cfg.fallback},
		resolver: resolver,
		fallback: cfg.fallback,
	}

	name := strings.ToLower(strings.TrimSpace(text))
	switch {
	case lookup == nil:
		c.err = errors.New("infobool: lookup is required")
	case !expr.IsSingle(name):
		c.err = &expr.ParseError{
			Kind:       expr.ErrSyntax,
			Expression: text,
			Token:      name,
			Msg:        "expected a single condition",
		}
	default:
		info, ok := lookup.Lookup(name)
		if !ok {
			c.err = &expr.ParseError{
				Kind:       expr.ErrUnknownCondition,
				Expression: text,
				Token:      name,
			}
			break
		}
		c.info = info
		c.itemDependent = info.ItemDependent
	}

	if c.err != nil {
		reportCompileError(cfg.logger, text, context, c.err)
	}
	return c
}

// ID returns the id of the wrapped condition.
func (c *Condition) ID() int { return c.info.ID }

// Get implements Bool.
func (c *Condition) Get(frame uint64, item condition.Item) bool {
	return c.get(frame, item, c.evaluate)
}

// Update implements Bool.
func (c *Condition) Update(item condition.Item) {
	c.update(item, c.evaluate)
}

// Err implements Bool.
func (c *Condition) Err() error { return c.err }

// Equal implements Bool.
func (c *Condition) Equal(other Bool) bool { return c.equal(other) }

func (c *Condition) evaluate(item condition.Item) bool {
	if c.err != nil || c.resolver == nil {
		return c.fallback
	}
	return c.resolver.Resolve(c.info.ID, c.context, item)
}
