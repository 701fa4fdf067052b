package cli

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/sandrolain/jsonata/pkg/compiler"
)

func newASTCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast EXPR",
		Short: "print the compiled form of an expression",
		Long: `ast compiles EXPR and prints it back in canonical form, which is
useful to check how an expression is grouped:

	$ jsonata ast 'a.b[c>1]'
	a.b[c > 1]

With --go the resolved syntax tree is dumped as a Go value instead.
`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runAST),
	}
	cmd.Flags().Bool(string(flagGo), false, "dump the resolved syntax tree")
	return cmd
}

func runAST(cmd *Command, args []string) error {
	expr, err := compiler.Compile(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if flagGo.Bool(cmd) {
		_, err = fmt.Fprintf(w, "%# v\n", pretty.Formatter(expr.AST()))
		return err
	}
	_, err = fmt.Fprintln(w, expr.Format())
	return err
}
