package registry

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/goliatone/go-condexpr/pkg/condition"
	"github.com/goliatone/go-condexpr/pkg/expr"
	"github.com/goliatone/go-condexpr/pkg/infobool"
)

// Registry stores rules by index and deduplicates them: registering the same
// text in the same context twice returns the rule built the first time.
type Registry struct {
	mu       sync.RWMutex
	rules    []infobool.Bool
	buckets  map[uint64][]int
	lookup   condition.Lookup
	resolver condition.Resolver
	logger   log.Logger
	opts     []infobool.Option
}

// Option customises a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events and compile
// failures.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFallback sets the value rules that fail to compile evaluate to.
func WithFallback(value bool) Option {
	return func(r *Registry) {
		r.opts = append(r.opts, infobool.WithFallback(value))
	}
}

// New creates an empty registry compiling rules against lookup and
// evaluating them with resolver.
func New(lookup condition.Lookup, resolver condition.Resolver, opts ...Option) *Registry {
	r := &Registry{
		buckets:  make(map[uint64][]int),
		lookup:   lookup,
		resolver: resolver,
		logger:   log.NewNopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func ruleKey(text string, context int) uint64 {
	return xxhash.Sum64String(strconv.Itoa(context) + "\x00" + text)
}

// Register returns the index of the rule for text in context, building it if
// needed. Lone conditions become infobool.Condition values and everything else
// an infobool.Expression. Rules that fail to compile are still registered and
// evaluate to the fallback value; their error is available through Err.
func (r *Registry) Register(text string, context int) (int, infobool.Bool) {
	text = strings.TrimSpace(text)
	key := ruleKey(text, context)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, idx := range r.buckets[key] {
		rule := r.rules[idx]
		if rule.Context() == context && rule.Source() == text {
			return idx, rule
		}
	}

	opts := append([]infobool.Option{infobool.WithLogger(r.logger)}, r.opts...)
	var rule infobool.Bool
	if expr.IsSingle(text) {
		rule = infobool.NewCondition(text, context, r.lookup, r.resolver, opts...)
	} else {
		rule = infobool.NewExpression(text, context, r.lookup, r.resolver, opts...)
	}

	idx := len(r.rules)
	r.rules = append(r.rules, rule)
	r.buckets[key] = append(r.buckets[key], idx)

	level.Debug(r.logger).Log(
		"msg", "rule registered",
		"index", idx,
		"expression", text,
		"context", context,
		"item_dependent", rule.ItemDependent(),
	)
	return idx, rule
}

// Get retrieves a rule by index.
func (r *Registry) Get(index int) (infobool.Bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.rules) {
		return nil, fmt.Errorf("registry: rule %d not found", index)
	}
	return r.rules[index], nil
}

// MustGet panics if the rule is missing.
func (r *Registry) MustGet(index int) infobool.Bool {
	rule, err := r.Get(index)
	if err != nil {
		panic(err)
	}
	return rule
}

// Evaluate returns the value of the rule at index for frame and item.
func (r *Registry) Evaluate(index int, frame uint64, item condition.Item) (bool, error) {
	rule, err := r.Get(index)
	if err != nil {
		return false, err
	}
	return rule.Get(frame, item), nil
}

// Len reports how many distinct rules are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// InvalidateAll marks every rule stale so the next Get refreshes it.
func (r *Registry) InvalidateAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		rule.Invalidate()
	}
}

// Errors returns the compile errors of every failed rule, keyed by index.
func (r *Registry) Errors() map[int]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out map[int]error
	for idx, rule := range r.rules {
		if err := rule.Err(); err != nil {
			if out == nil {
				out = make(map[int]error)
			}
			out[idx] = err
		}
	}
	return out
}
