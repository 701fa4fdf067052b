// Package cli implements the jsonata command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/ext"
)

type runFunction func(cmd *Command, args []string) error

// mkRunE binds a run function to the subcommand cobra is executing.
func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// Command is the jsonata command line. It wraps the cobra command being
// executed together with the state shared by all subcommands.
type Command struct {
	// The currently active command.
	*cobra.Command

	root   *cobra.Command
	logger *slog.Logger
}

func newRootCmd() *Command {
	cmd := &cobra.Command{
		Use:   "jsonata",
		Short: "jsonata queries and transforms JSON and YAML documents.",
		Long: `jsonata evaluates JSONata expressions against JSON or YAML input.

An expression selects and reshapes data:

	jsonata eval 'Account.Order.Product[Price > 30].Name' order.json

Input is read from the named file, or from standard input when the file
is omitted or is "-". Results are printed as JSON unless --output yaml
is given. An expression that produces no value prints nothing.`,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &Command{Command: cmd, root: cmd}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		c.setupLogging()
		return nil
	}

	addGlobalFlags(cmd.PersistentFlags())

	subCommands := []*cobra.Command{
		newEvalCmd(c),
		newASTCmd(c),
		newReplCmd(c),
		newBatchCmd(c),
		newVersionCmd(c),
	}
	for _, sub := range subCommands {
		cmd.AddCommand(sub)
	}
	return c
}

// New creates the command line for args, which exclude the program name.
func New(args []string) *Command {
	c := newRootCmd()
	c.root.SetArgs(args)
	return c
}

// Main runs the command line on the process arguments and returns the
// exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "jsonata:", err)
		return 1
	}
	return 0
}

// Run executes the command.
func (c *Command) Run(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// SetOutput sets the writer for results.
func (c *Command) SetOutput(w io.Writer) {
	c.root.SetOut(w)
}

// SetErr sets the writer for diagnostics and logs.
func (c *Command) SetErr(w io.Writer) {
	c.root.SetErr(w)
}

// SetInput sets the reader used for standard input.
func (c *Command) SetInput(r io.Reader) {
	c.root.SetIn(r)
}

func (c *Command) setupLogging() {
	level := slog.LevelWarn
	if flagVerbose.Bool(c) {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(c.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Logger returns the logger configured by the global flags.
func (c *Command) Logger() *slog.Logger {
	if c.logger == nil {
		c.setupLogging()
	}
	return c.logger
}

// evalOptions translates the global flags into evaluator options.
func (c *Command) evalOptions() ([]evaluator.EvalOption, error) {
	opts := []evaluator.EvalOption{
		evaluator.WithLogger(c.Logger()),
		evaluator.WithTimeout(flagTimeout.Duration(c)),
	}
	if flagVerbose.Bool(c) {
		opts = append(opts, evaluator.WithDebug(true))
	}
	if depth := flagMaxDepth.Int(c); depth > 0 {
		opts = append(opts, evaluator.WithMaxDepth(depth))
	} else if depth < 0 {
		return nil, errors.New("--max-depth must not be negative")
	}
	if flagExt.Bool(c) {
		opts = append(opts, ext.WithAll())
	}
	return opts, nil
}

func (c *Command) newEvaluator(extra ...evaluator.EvalOption) (*evaluator.Evaluator, error) {
	opts, err := c.evalOptions()
	if err != nil {
		return nil, err
	}
	return evaluator.New(append(opts, extra...)...), nil
}
