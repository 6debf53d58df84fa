package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-condexpr/pkg/condition"
)

// names maps each known condition to its id; ids are assigned in order.
var names = []string{"a", "b", "c", "d", "e", "list.label"}

func testLookup() condition.Lookup {
	return condition.LookupFunc(func(name string) (condition.Info, bool) {
		for i, n := range names {
			if n == name {
				return condition.Info{ID: i + 1, ItemDependent: strings.HasPrefix(name, "list.")}, true
			}
		}
		return condition.Info{}, false
	})
}

// recorder resolves conditions from a fixed truth table and records the
// order in which conditions were asked for.
type recorder struct {
	values map[string]bool
	calls  []string
}

func (r *recorder) Resolve(id, context int, item condition.Item) bool {
	name := names[id-1]
	r.calls = append(r.calls, name)
	return r.values[name]
}

func truth(trueNames ...string) *recorder {
	values := make(map[string]bool, len(trueNames))
	for _, name := range trueNames {
		values[name] = true
	}
	return &recorder{values: values}
}

func mustParse(t *testing.T, text string) *Tree {
	t.Helper()
	tree, err := Parse(text, testLookup())
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", text, err)
	}
	return tree
}

func TestParseStructure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"a", "a"},
		{"!a", "!a"},
		{"a and b and c", "and(a, b, c)"},
		{"a + b + c + d", "and(a, b, c, d)"},
		{"a | b | c", "or(a, b, c)"},
		{"a or b and c", "or(a, and(b, c))"},
		{"a and b or c", "or(and(a, b), c)"},
		{"(a or b) and c", "and(or(a, b), c)"},
		{"a and (b and c)", "and(a, b, c)"},
		{"(a and b) and (c and d)", "and(a, b, c, d)"},
		{"a or (b or c) or d", "or(a, b, c, d)"},
		{"not a and b", "and(!a, b)"},
		{"a and not b or c", "or(and(a, !b), c)"},
		{"not (a or b)", "and(!a, !b)"},
		{"![a + b] | c", "or(!a, !b, c)"},
		{"!(a | b + c)", "and(!a, or(!b, !c))"},
		{"!!a", "a"},
		{"not not not a", "!a"},
		{"[a|b]+[c|d]", "and(or(a, b), or(c, d))"},
		{"[(a | b)] + c", "and(or(a, b), c)"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, tc.input)
			if got := tree.String(); got != tc.want {
				t.Fatalf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseFlattensAssociativeChains(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, "a and b and c")
	if tree.Root.Kind != KindAnd {
		t.Fatalf("expected and group at root, got %s", tree.Root.Kind)
	}
	if len(tree.Root.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(tree.Root.Children))
	}
	var got []string
	for i, child := range tree.Root.Children {
		if child.Kind != KindLeaf {
			t.Fatalf("child %d: expected leaf, got %s", i, child.Kind)
		}
		got = append(got, child.Name)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMarksItemDependence(t *testing.T) {
	t.Parallel()

	if mustParse(t, "a + b").ItemDependent {
		t.Fatalf("expected plain expression to be item independent")
	}
	if !mustParse(t, "a + !list.label").ItemDependent {
		t.Fatalf("expected expression referencing list.label to be item dependent")
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		kind  error
	}{
		{"", ErrSyntax},
		{"   ", ErrSyntax},
		{"a and (b", ErrSyntax},
		{"a and b)", ErrSyntax},
		{"and a", ErrSyntax},
		{"a and", ErrSyntax},
		{"a b", ErrSyntax},
		{"a !b", ErrSyntax},
		{"a (b)", ErrSyntax},
		{"()", ErrSyntax},
		{"a or or b", ErrSyntax},
		{"(a]", ErrSyntax},
		{"[a | b) + c", ErrSyntax},
		{"[(a])", ErrSyntax},
		{"!", ErrSyntax},
		{"a + missing", ErrUnknownCondition},
		{"nope", ErrUnknownCondition},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			tree, err := Parse(tc.input, testLookup())
			if tree != nil {
				t.Fatalf("expected nil tree, got %s", tree)
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Expression != tc.input {
				t.Fatalf("expected expression %q on error, got %q", tc.input, perr.Expression)
			}
		})
	}
}

func TestParseUnknownConditionReportsName(t *testing.T) {
	t.Parallel()

	_, err := Parse("a + Missing", testLookup())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Token != "missing" || perr.Pos != 4 {
		t.Fatalf("unexpected error details: %+v", perr)
	}
	if !strings.Contains(err.Error(), `"missing"`) {
		t.Fatalf("expected message to name the operand, got %q", err.Error())
	}
}

func TestParseRejectsMismatchedBrackets(t *testing.T) {
	t.Parallel()

	_, err := Parse("[a | b) + c", testLookup())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Token != ")" || perr.Pos != 6 || !strings.Contains(perr.Msg, "mismatched bracket") {
		t.Fatalf("unexpected error details: %+v", perr)
	}
}

func TestParseRequiresLookup(t *testing.T) {
	t.Parallel()

	if _, err := Parse("a", nil); err == nil {
		t.Fatalf("expected error without lookup")
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustParse("a +", testLookup())
}
