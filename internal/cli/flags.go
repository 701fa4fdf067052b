package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Common flags.
const (
	flagBind        flagName = "bind"
	flagCompact     flagName = "compact"
	flagExt         flagName = "ext"
	flagGo          flagName = "go"
	flagIndent      flagName = "indent"
	flagInputFormat flagName = "input-format"
	flagMaxDepth    flagName = "max-depth"
	flagOutput      flagName = "output"
	flagTimeout     flagName = "timeout"
	flagVerbose     flagName = "verbose"
)

const (
	formatAuto = "auto"
	formatJSON = "json"
	formatYAML = "yaml"
)

func addGlobalFlags(f *pflag.FlagSet) {
	f.BoolP(string(flagVerbose), "v", false,
		"log evaluation steps to stderr")
	f.Bool(string(flagExt), false,
		"enable the extension functions ($startsWith, $parseDate, $pipe, ...)")
	f.Duration(string(flagTimeout), 30*time.Second,
		"abort an evaluation after this long; 0 disables the limit")
	f.Int(string(flagMaxDepth), 0,
		"maximum nesting of non-tail function calls (0 for the default)")
}

func addInputFlags(f *pflag.FlagSet) {
	f.String(string(flagInputFormat), formatAuto,
		"input format: auto, json or yaml (auto picks yaml for .yaml and .yml files)")
}

func addOutFlags(f *pflag.FlagSet) {
	f.StringP(string(flagOutput), "o", formatJSON,
		"output format: json or yaml")
	f.Int(string(flagIndent), 2,
		"indentation of the output")
	f.BoolP(string(flagCompact), "c", false,
		"print JSON on a single line")
}

type flagName string

func (f flagName) ensureAdded(cmd *Command) {
	if cmd.Flags().Lookup(string(f)) == nil {
		panic(fmt.Sprintf("Cmd %q uses flag %q without adding it", cmd.Name(), f))
	}
}

func (f flagName) Bool(cmd *Command) bool {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetBool(string(f))
	return v
}

func (f flagName) Int(cmd *Command) int {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetInt(string(f))
	return v
}

func (f flagName) String(cmd *Command) string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetString(string(f))
	return v
}

func (f flagName) StringArray(cmd *Command) []string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetStringArray(string(f))
	return v
}

func (f flagName) Duration(cmd *Command) time.Duration {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetDuration(string(f))
	return v
}
