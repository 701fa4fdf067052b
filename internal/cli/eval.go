package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/jsonata/pkg/compiler"
	"github.com/sandrolain/jsonata/pkg/types"
)

func newEvalCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval EXPR [FILE]",
		Short: "evaluate an expression against a document",
		Long: `eval evaluates EXPR against the document in FILE, or against
standard input when FILE is omitted or is "-", and prints the result.

Variables can be bound from the command line; the value is parsed as
JSON:

	jsonata eval --bind limit=100 'items[price > $limit]' items.json

Examples:

	$ echo '{"a": [1, 2, 3]}' | jsonata eval -c '$sum(a)'
	6

	$ jsonata eval -o yaml 'Account.Order[0]' order.json
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: mkRunE(c, runEval),
	}
	addInputFlags(cmd.Flags())
	addOutFlags(cmd.Flags())
	cmd.Flags().StringArrayP(string(flagBind), "b", nil,
		"bind a variable, as name=<json value>; may be repeated")
	return cmd
}

func runEval(cmd *Command, args []string) error {
	expr, err := compiler.Compile(args[0])
	if err != nil {
		return err
	}
	p, err := cmd.newPrinter()
	if err != nil {
		return err
	}
	bindings, err := parseBindings(flagBind.StringArray(cmd))
	if err != nil {
		return err
	}
	file := "-"
	if len(args) > 1 {
		file = args[1]
	}
	data, err := cmd.readInput(file)
	if err != nil {
		return err
	}

	ev, err := cmd.newEvaluator()
	if err != nil {
		return err
	}
	cmd.Logger().Debug("evaluating", "expression", expr.Source(), "input", file)
	result, err := ev.EvalWithBindings(cmd.Context(), expr, data, bindings)
	if err != nil {
		return err
	}
	return p.print(cmd.OutOrStdout(), result)
}

// parseBindings parses name=<json> pairs. A leading $ on the name is
// accepted.
func parseBindings(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	bindings := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "$")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q: want name=<json>", pair)
		}
		v, err := types.DecodeJSON([]byte(value))
		if err != nil {
			return nil, fmt.Errorf("invalid binding %q: %w", pair, err)
		}
		bindings[name] = v
	}
	return bindings, nil
}
