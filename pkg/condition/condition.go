package condition

// Item is an opaque contextual item (for example the list entry a widget is
// currently drawing). Only an untyped nil means no item is in play; a typed
// nil pointer such as (*T)(nil) is still an item.
type Item any

// Resolver reports the current truth value of an atomic condition. Resolvers
// must be read-only from the caller's perspective: the engine may call them
// any number of times, in any order, and skips calls it does not need.
type Resolver interface {
	Resolve(id, context int, item Item) bool
}

// ResolverFunc adapts a function into a Resolver.
type ResolverFunc func(id, context int, item Item) bool

// Resolve delegates to the underlying function.
func (fn ResolverFunc) Resolve(id, context int, item Item) bool {
	return fn(id, context, item)
}

// Info describes a condition known to a Lookup.
type Info struct {
	ID int
	// ItemDependent is set when the condition value can differ between items,
	// which disables frame caching whenever an item is supplied.
	ItemDependent bool
}

// Lookup translates a condition name into its Info. It is only consulted
// while compiling a rule.
type Lookup interface {
	Lookup(name string) (Info, bool)
}

// LookupFunc adapts a function into a Lookup.
type LookupFunc func(name string) (Info, bool)

// Lookup delegates to the underlying function.
func (fn LookupFunc) Lookup(name string) (Info, bool) {
	return fn(name)
}
