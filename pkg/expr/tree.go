package expr

import (
	"strings"

	"github.com/goliatone/go-condexpr/pkg/condition"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindAnd
	KindOr
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		return "unknown"
	}
}

// flip swaps AND and OR, which is how negation is pushed through a group.
func (k Kind) flip() Kind {
	switch k {
	case KindAnd:
		return KindOr
	case KindOr:
		return KindAnd
	default:
		return k
	}
}

// Node is either a leaf referring to one condition or an associative AND/OR
// group. Leaf fields are zero on groups and Children is empty on leaves.
// Negation only ever appears on leaves.
type Node struct {
	Kind      Kind
	Condition int
	Name      string
	Invert    bool
	Children  []*Node
}

// Evaluate resolves the node against resolver. Groups short-circuit from left
// to right, so later children are not resolved once the result is known.
func (n *Node) Evaluate(resolver condition.Resolver, context int, item condition.Item) bool {
	switch n.Kind {
	case KindLeaf:
		return resolver.Resolve(n.Condition, context, item) != n.Invert
	case KindAnd:
		for _, child := range n.Children {
			if !child.Evaluate(resolver, context, item) {
				return false
			}
		}
		return true
	case KindOr:
		for _, child := range n.Children {
			if child.Evaluate(resolver, context, item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (n *Node) addChild(child *Node) {
	n.Children = append(n.Children, child)
}

func (n *Node) prependChild(child *Node) {
	n.Children = append([]*Node{child}, n.Children...)
}

// merge moves the children of other (a group of the same kind) into n.
func (n *Node) merge(other *Node) {
	n.Children = append(n.Children, other.Children...)
	other.Children = nil
}

// String renders the node as `and(a, !b, or(c, d))`.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n.Kind == KindLeaf {
		if n.Invert {
			b.WriteByte('!')
		}
		b.WriteString(n.Name)
		return
	}
	b.WriteString(n.Kind.String())
	b.WriteByte('(')
	for i, child := range n.Children {
		if i > 0 {
			b.WriteString(", ")
		}
		child.write(b)
	}
	b.WriteByte(')')
}

// Tree is a compiled expression. A Tree with a nil Root is the fallback used
// for rules that failed to compile and always evaluates to false.
type Tree struct {
	Root          *Node
	ItemDependent bool
}

// Evaluate resolves the whole tree.
func (t *Tree) Evaluate(resolver condition.Resolver, context int, item condition.Item) bool {
	if t == nil || t.Root == nil || resolver == nil {
		return false
	}
	return t.Root.Evaluate(resolver, context, item)
}

func (t *Tree) String() string {
	if t == nil || t.Root == nil {
		return "false"
	}
	return t.Root.String()
}

// Walk visits every node depth first, parents before children.
func (t *Tree) Walk(fn func(*Node)) {
	if t == nil || t.Root == nil || fn == nil {
		return
	}
	walk(t.Root, fn)
}

func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		walk(child, fn)
	}
}
