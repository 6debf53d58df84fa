package infobool

import (
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/goliatone/go-condexpr/pkg/condition"
)

// Bool is a boolean rule whose value is cached between display frames.
type Bool interface {
	// Get refreshes the value when needed and returns it. Without an item (or
	// for rules that do not depend on items) the value is refreshed at most
	// once per distinct frame. With an item, item dependent rules are always
	// re-evaluated and the shared frame cache is left untouched. Pass an
	// untyped nil for "no item": a typed nil pointer stored in item counts as
	// an item.
	Get(frame uint64, item condition.Item) bool
	// Update re-evaluates the rule against item and stores the result.
	Update(item condition.Item)
	// Invalidate forces the next Get to refresh regardless of frame.
	Invalidate()
	Value() bool
	Context() int
	Source() string
	ItemDependent() bool
	// Err reports why the rule failed to compile, if it did. Rules that
	// failed to compile evaluate to their fallback value.
	Err() error
	// Equal reports whether both rules share context and source text. The
	// comparison is textual: "a + b" and "b + a" are different rules.
	Equal(other Bool) bool
}

type state uint8

const (
	stateStale state = iota
	stateFresh
)

// cache carries the state shared by every Bool implementation.
type cache struct {
	mu sync.Mutex

	value         bool
	context       int
	itemDependent bool
	source        string

	state state
	frame uint64
}

func (c *cache) get(frame uint64, item condition.Item, evaluate func(condition.Item) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item != nil && c.itemDependent {
		return evaluate(item)
	}
	if c.state == stateStale || c.frame != frame {
		c.value = evaluate(nil)
		c.state = stateFresh
		c.frame = frame
	}
	return c.value
}

func (c *cache) update(item condition.Item, evaluate func(condition.Item) bool) {
	c.mu.Lock()
	c.value = evaluate(item)
	c.mu.Unlock()
}

// Invalidate implements Bool.
func (c *cache) Invalidate() {
	c.mu.Lock()
	c.state = stateStale
	c.mu.Unlock()
}

// Value returns the last computed value without refreshing it.
func (c *cache) Value() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Context implements Bool.
func (c *cache) Context() int { return c.context }

// Source implements Bool.
func (c *cache) Source() string { return c.source }

// ItemDependent implements Bool.
func (c *cache) ItemDependent() bool { return c.itemDependent }

func (c *cache) equal(other Bool) bool {
	if other == nil {
		return false
	}
	return c.context == other.Context() && c.source == other.Source()
}

type config struct {
	logger   log.Logger
	fallback bool
}

// Option customises how a rule is built.
type Option func(*config)

// WithLogger sets the sink compile failures are reported to. Each failing rule
// is reported once, when it is built.
func WithLogger(logger log.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithFallback sets the value returned by rules that failed to compile.
// Defaults to false.
func WithFallback(value bool) Option {
	return func(cfg *config) {
		cfg.fallback = value
	}
}

func newConfig(opts []Option) config {
	cfg := config{logger: log.NewNopLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func reportCompileError(logger log.Logger, source string, context int, err error) {
	level.Warn(logger).Log(
		"msg", "rule failed to compile",
		"expression", source,
		"context", context,
		"err", err,
	)
}
