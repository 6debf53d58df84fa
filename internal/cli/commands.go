package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-condexpr/pkg/catalog"
	"github.com/goliatone/go-condexpr/pkg/condition"
	"github.com/goliatone/go-condexpr/pkg/expr"
	"github.com/goliatone/go-condexpr/pkg/prompt"
	"github.com/goliatone/go-condexpr/pkg/registry"
)

func newEvalCommand(a *app) *cobra.Command {
	var (
		trueNames  []string
		falseNames []string
		itemNames  []string
		ctxID      int
	)

	cmd := &cobra.Command{
		Use:   "eval EXPR...",
		Short: "evaluate one or more expressions against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range trueNames {
				if err := a.setCondition(name, true); err != nil {
					return err
				}
			}
			for _, name := range falseNames {
				if err := a.setCondition(name, false); err != nil {
					return err
				}
			}

			var item condition.Item
			if len(itemNames) > 0 {
				values := make(catalog.Item, len(itemNames))
				for _, name := range itemNames {
					key := strings.ToLower(strings.TrimSpace(name))
					if _, ok := a.catalog.Lookup(key); !ok {
						a.catalog.Define(key, true)
					}
					values[key] = true
				}
				item = values
			}

			reg := registry.New(a.catalog, a.catalog, registry.WithLogger(a.logger))
			failed := 0
			for _, text := range args {
				_, rule := reg.Register(text, ctxID)
				value := rule.Get(1, item)
				if err := rule.Err(); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s => %s (%v)\n", text, a.colorize(value), err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", text, a.colorize(value))
			}
			if failed > 0 {
				return fmt.Errorf("cli: %d of %d expressions failed to compile", failed, len(args))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&trueNames, "true", nil, "conditions to set true")
	flags.StringSliceVar(&falseNames, "false", nil, "conditions to set false")
	flags.StringSliceVar(&itemNames, "item", nil, "item dependent conditions that are true for the evaluated item")
	flags.IntVar(&ctxID, "context", 0, "context id passed to the resolver")
	return cmd
}

// setCondition sets a catalog value, defining the condition first when the
// catalog does not know it.
func (a *app) setCondition(name string, value bool) error {
	if _, ok := a.catalog.Lookup(name); !ok {
		a.catalog.Define(name, false)
	}
	return a.catalog.Set(name, value)
}

func newExplainCommand(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "explain EXPR",
		Short: "print the compiled tree of an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lookup condition.Lookup = a.catalog
			if !strict {
				lookup = condition.LookupFunc(func(name string) (condition.Info, bool) {
					if info, ok := a.catalog.Lookup(name); ok {
						return info, true
					}
					return a.catalog.Define(name, false), true
				})
			}

			tree, err := expr.Parse(args[0], lookup)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tree.String())
			fmt.Fprintf(out, "item dependent: %v\n", tree.ItemDependent)
			tree.Walk(func(n *expr.Node) {
				if n.Kind == expr.KindLeaf {
					fmt.Fprintf(out, "  %d\t%s\n", n.Condition, n.String())
				}
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on conditions missing from the catalog")
	return cmd
}

func newInteractiveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "toggle catalog conditions and evaluate expressions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver := a.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver(cmd.OutOrStdout())
			}
			err := a.interactive(cmd.Context(), driver)
			if errors.Is(err, prompt.ErrAborted) {
				return nil
			}
			return err
		},
	}
}

func (a *app) interactive(ctx context.Context, driver prompt.Driver) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reg := registry.New(a.catalog, a.catalog, registry.WithLogger(a.logger))
	names := a.catalog.Names()

	for frame := uint64(1); ; frame++ {
		if len(names) > 0 {
			var defaults []int
			for i, name := range names {
				if v, _ := a.catalog.Value(name); v {
					defaults = append(defaults, i)
				}
			}
			selected, err := driver.MultiSelect(ctx, prompt.SelectConfig{
				Message:  "Which conditions are true?",
				Options:  names,
				Defaults: defaults,
			})
			if err != nil {
				return err
			}
			on := make(map[int]struct{}, len(selected))
			for _, idx := range selected {
				on[idx] = struct{}{}
			}
			for i, name := range names {
				_, set := on[i]
				if err := a.catalog.Set(name, set); err != nil {
					return err
				}
			}
		}

		text, err := driver.Input(ctx, prompt.InputConfig{
			Message: "Expression (empty to quit):",
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}

		_, rule := reg.Register(text, 0)
		value := rule.Get(frame, nil)
		msg := fmt.Sprintf("%s => %s", strings.TrimSpace(text), a.colorize(value))
		if err := rule.Err(); err != nil {
			msg += fmt.Sprintf(" (%v)", err)
		}
		if err := driver.Info(ctx, msg); err != nil {
			return err
		}
	}
}
