package infobool

import (
	"github.com/goliatone/go-condexpr/pkg/condition"
	"github.com/goliatone/go-condexpr/pkg/expr"
)

// Expression is a rule compiled from a boolean expression over named
// conditions. The tree is built once, in NewExpression, and never changes.
type Expression struct {
	cache
	tree     *expr.Tree
	resolver condition.Resolver
	fallback bool
	err      error
}

var _ Bool = (*Expression)(nil)

// NewExpression compiles text into a rule. Compile failures do not prevent
// construction: the rule keeps the error (see Err), reports it once to the
// configured logger and evaluates to the fallback value from then on.
func NewExpression(text string, context int, lookup condition.Lookup, resolver condition.Resolver, opts ...Option) *Expression {
	cfg := newConfig(opts)
	e := &Expression{
		cache:    cache{context: context, source: text, value: cfg.fallback},
		resolver: resolver,
		fallback: cfg.fallback,
	}

	tree, err := expr.Parse(text, lookup)
	if err != nil {
		e.err = err
		e.tree = &expr.Tree{}
		reportCompileError(cfg.logger, text, context, err)
		return e
	}
	e.tree = tree
	e.itemDependent = tree.ItemDependent
	return e
}

// Tree returns the compiled tree. Rules that failed to compile return the
// empty fallback tree.
func (e *Expression) Tree() *expr.Tree { return e.tree }

// Get implements Bool.
func (e *Expression) Get(frame uint64, item condition.Item) bool {
	return e.get(frame, item, e.evaluate)
}

// Update implements Bool.
func (e *Expression) Update(item condition.Item) {
	e.update(item, e.evaluate)
}

// Err implements Bool.
func (e *Expression) Err() error { return e.err }

// Equal implements Bool.
func (e *Expression) Equal(other Bool) bool { return e.equal(other) }

func (e *Expression) evaluate(item condition.Item) bool {
	if e.err != nil {
		return e.fallback
	}
	return e.tree.Evaluate(e.resolver, e.context, item)
}
