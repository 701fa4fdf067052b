package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/types"
)

// printer writes evaluation results in the format selected by the
// output flags.
type printer struct {
	format string
	indent int
}

func (c *Command) newPrinter() (*printer, error) {
	p := &printer{
		format: flagOutput.String(c),
		indent: flagIndent.Int(c),
	}
	if flagCompact.Bool(c) {
		p.indent = 0
	}
	switch p.format {
	case formatJSON, formatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", p.format)
	}
	if p.indent < 0 {
		return nil, fmt.Errorf("--indent must not be negative")
	}
	return p, nil
}

// print writes v followed by a newline. An undefined result writes
// nothing.
func (p *printer) print(w io.Writer, v interface{}) error {
	if v == nil {
		return nil
	}
	v = outputValue(v)
	if p.format == formatYAML {
		enc := yaml.NewEncoder(w)
		indent := p.indent
		if indent == 0 {
			indent = 2
		}
		enc.SetIndent(indent)
		if err := enc.Encode(toYAML(v)); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if p.indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", p.indent))
	}
	return enc.Encode(v)
}

// outputValue replaces function values, which have no JSON form, by the
// empty string.
func outputValue(v interface{}) interface{} {
	switch t := v.(type) {
	case evaluator.Function:
		return ""
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = outputValue(item)
		}
		return out
	case *types.OrderedObject:
		out := types.NewOrderedObject()
		for _, k := range t.Keys {
			out.Set(k, outputValue(t.Values[k]))
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = outputValue(item)
		}
		return out
	}
	return v
}

func toYAML(v interface{}) *yaml.Node {
	switch t := v.(type) {
	case *types.OrderedObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.Keys {
			n.Content = append(n.Content, yamlString(k), toYAML(t.Values[k]))
		}
		return n
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			n.Content = append(n.Content, yamlString(k), toYAML(t[k]))
		}
		return n
	case []interface{}:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			n.Content = append(n.Content, toYAML(item))
		}
		return n
	case string:
		return yamlString(t)
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e21 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatFloat(t, 'f', -1, 64)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(t, 'g', -1, 64)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func yamlString(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
