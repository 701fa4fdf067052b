package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/jsonata/pkg/types"
)

// readInput reads and decodes the document in file, or standard input
// for "-". Empty input yields no document.
func (c *Command) readInput(file string) (interface{}, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(c.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	format := flagInputFormat.String(c)
	if format == formatAuto {
		format = formatFromName(file)
	}
	v, err := decodeInput(data, format)
	if err != nil {
		if file == "-" {
			file = "stdin"
		}
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return v, nil
}

func formatFromName(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

// decodeInput decodes data in the given format into the value model of
// the evaluator. Object keys keep their document order.
func decodeInput(data []byte, format string) (interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	switch format {
	case formatJSON:
		return types.DecodeJSON(data)
	case formatYAML:
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

func decodeYAML(data []byte) (interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromYAML(&doc)
}

func fromYAML(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		items := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.MappingNode:
		obj := types.NewOrderedObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: unsupported non-scalar mapping key", key.Line)
			}
			v, err := fromYAML(value)
			if err != nil {
				return nil, err
			}
			obj.Set(key.Value, v)
		}
		return obj, nil
	case yaml.ScalarNode:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return yamlScalar(v, n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func yamlScalar(v interface{}, n *yaml.Node) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return types.NullValue, nil
	case string, bool, float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case []byte:
		return string(t), nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML value %q", n.Line, n.Value)
}
