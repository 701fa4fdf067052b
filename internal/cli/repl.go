package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sandrolain/jsonata/pkg/compiler"
	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/ext"
	"github.com/sandrolain/jsonata/pkg/types"
)

const (
	replPrompt  = "> "
	historyFile = ".jsonata_history"
)

func newReplCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl [FILE]",
		Short: "evaluate expressions interactively",
		Long: `repl reads expressions line by line and evaluates each one against
the document loaded from FILE.

A top-level binding such as "$total := $sum(items.price)" keeps its value
for the following lines. Lines starting with ':' are commands:

	:load FILE    load the document from FILE
	:data JSON    use JSON as the document
	:vars         list the variables bound so far
	:help         show this help
	:quit         leave the repl (as does Ctrl-D)
`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, runRepl),
	}
	addInputFlags(cmd.Flags())
	addOutFlags(cmd.Flags())
	return cmd
}

type repl struct {
	cmd      *Command
	ev       *evaluator.Evaluator
	printer  *printer
	out      io.Writer
	data     interface{}
	bindings map[string]interface{}
}

func runRepl(cmd *Command, args []string) error {
	ev, err := cmd.newEvaluator()
	if err != nil {
		return err
	}
	p, err := cmd.newPrinter()
	if err != nil {
		return err
	}
	r := &repl{
		cmd:      cmd,
		ev:       ev,
		printer:  p,
		out:      cmd.OutOrStdout(),
		bindings: make(map[string]interface{}),
	}
	if len(args) == 1 {
		if r.data, err = cmd.readInput(args[0]); err != nil {
			return err
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(r.complete)

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, historyFile)
		if f, err := os.Open(history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if history == "" {
			return
		}
		if f, err := os.Create(history); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := line.Prompt(replPrompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}
		if err := r.eval(cmd.Context(), input); err != nil {
			fmt.Fprintln(r.out, "error:", err)
		}
	}
}

// eval evaluates one line. A top-level binding is remembered for later
// lines.
func (r *repl) eval(ctx context.Context, src string) error {
	expr, err := compiler.Compile(src)
	if err != nil {
		return err
	}
	result, err := r.ev.EvalWithBindings(ctx, expr, r.data, r.bindings)
	if err != nil {
		return err
	}
	if root := expr.AST(); root.Type == types.NodeBind && root.LHS != nil && root.LHS.Type == types.NodeVariable {
		r.bindings[root.LHS.Value] = result
	}
	return r.printer.print(r.out, result)
}

// command runs a : command and reports whether the repl should stop.
func (r *repl) command(input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":q", ":quit", ":exit":
		return true
	case ":load":
		if arg == "" {
			fmt.Fprintln(r.out, "usage: :load FILE")
			break
		}
		data, err := r.cmd.readInput(arg)
		if err != nil {
			fmt.Fprintln(r.out, "error:", err)
			break
		}
		r.data = data
	case ":data":
		data, err := decodeInput([]byte(arg), formatJSON)
		if err != nil {
			fmt.Fprintln(r.out, "error:", err)
			break
		}
		r.data = data
	case ":vars":
		names := make([]string, 0, len(r.bindings))
		for name := range r.bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(r.out, "$%s\n", name)
		}
	case ":help":
		fmt.Fprint(r.out, r.cmd.Long)
	default:
		fmt.Fprintf(r.out, "unknown command %s; try :help\n", name)
	}
	return false
}

// complete offers function and variable names for the $name being typed
// at the end of line.
func (r *repl) complete(line string) []string {
	i := strings.LastIndexByte(line, '$')
	if i < 0 {
		return nil
	}
	prefix, partial := line[:i], line[i+1:]
	if strings.ContainsAny(partial, " ()[]{},.;:") {
		return nil
	}
	var names []string
	names = append(names, evaluator.FunctionNames()...)
	if flagExt.Bool(r.cmd) {
		names = append(names, ext.Names()...)
	}
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, partial) {
			out = append(out, prefix+"$"+name)
		}
	}
	return out
}
