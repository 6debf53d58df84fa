package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-condexpr/pkg/condition"
)

// Item carries per-item condition values, keyed by condition name. It is the
// item type Catalog understands when resolving item dependent conditions.
type Item map[string]bool

// Catalog is an in-memory set of named conditions. It assigns ids, answers
// lookups while rules compile and resolves condition values afterwards.
type Catalog struct {
	mu      sync.RWMutex
	byName  map[string]int
	entries []entry
}

type entry struct {
	name          string
	itemDependent bool
	value         bool
}

var (
	_ condition.Lookup   = (*Catalog)(nil)
	_ condition.Resolver = (*Catalog)(nil)
)

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byName: make(map[string]int)}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Define registers a condition and returns its Info. Ids start at 1 and are
// assigned in definition order. Defining an existing name updates its item
// dependence and keeps its id.
func (c *Catalog) Define(name string, itemDependent bool) condition.Info {
	key := normalizeName(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.byName[key]; ok {
		c.entries[id-1].itemDependent = itemDependent
		return condition.Info{ID: id, ItemDependent: itemDependent}
	}

	c.entries = append(c.entries, entry{name: key, itemDependent: itemDependent})
	id := len(c.entries)
	c.byName[key] = id
	return condition.Info{ID: id, ItemDependent: itemDependent}
}

// Lookup implements condition.Lookup.
func (c *Catalog) Lookup(name string) (condition.Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[normalizeName(name)]
	if !ok {
		return condition.Info{}, false
	}
	return condition.Info{ID: id, ItemDependent: c.entries[id-1].itemDependent}, true
}

// Set changes the current value of a defined condition.
func (c *Catalog) Set(name string, value bool) error {
	key := normalizeName(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.byName[key]
	if !ok {
		return fmt.Errorf("catalog: condition %q not defined", key)
	}
	c.entries[id-1].value = value
	return nil
}

// Value returns the current value of a condition and whether it is defined.
func (c *Catalog) Value(name string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[normalizeName(name)]
	if !ok {
		return false, false
	}
	return c.entries[id-1].value, true
}

// Names returns the defined condition names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Resolve implements condition.Resolver. Item dependent conditions read their
// value from an Item when one is supplied and fall back to the catalog value
// otherwise. Unknown ids resolve to false.
func (c *Catalog) Resolve(id, context int, item condition.Item) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id < 1 || id > len(c.entries) {
		return false
	}
	e := c.entries[id-1]
	if e.itemDependent {
		if values, ok := item.(Item); ok {
			return values[e.name]
		}
	}
	return e.value
}
