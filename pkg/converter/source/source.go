// Package source decodes JSON, YAML and TOML input into documents the
// converter accepts, keeping mapping keys in their source order.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/stackvity/json2csv/pkg/converter"
	"gopkg.in/yaml.v3"
)

// Format names an input syntax.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrDecode indicates the input was not well-formed in its format.
	ErrDecode = errors.New("failed to decode input document")
	// ErrUnknownFormat indicates an input format name that is not supported.
	ErrUnknownFormat = errors.New("unknown input format")
)

// ParseFormat validates a format name. The empty string means FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: auto, json, yaml, toml)", ErrUnknownFormat, name)
	}
}

// DetectFormat picks a format from the path extension. Paths without a
// known extension (including stdin) are FormatAuto.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatAuto
	}
}

// IsSupportedPath reports whether a file found while walking a directory
// should be converted.
func IsSupportedPath(path string) bool {
	return DetectFormat(path) != FormatAuto
}

// Decode reads one document from r. FormatAuto sniffs the content: input
// whose first non-space byte opens a JSON array or object is JSON, anything
// else is YAML. TOML is never sniffed. Empty input decodes to a nil
// document.
func Decode(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", converter.ErrReadFailed, err)
	}
	if format == FormatAuto {
		format = Sniff(data)
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sniff guesses the format of data: JSON when the first non-space byte
// opens an array or object, YAML otherwise.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	return FormatYAML
}

// --- JSON ---

func decodeJSON(data []byte) (any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: json: unexpected data after top-level value", ErrDecode)
	}
	return v, nil
}

// decodeJSONValue reads one value from the token stream. Objects become
// *converter.Record so key order survives.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		rec := converter.NewRecord(0)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", keyTok)
			}
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			rec.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		items := []any{}
		for dec.More() {
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// --- YAML ---

func decodeYAML(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrDecode, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	v, err := yamlValue(root.Content[0])
	if err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrDecode, err)
	}
	return v, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		rec := converter.NewRecord(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.ShortTag() == "!!merge" {
				if err := mergeYAML(rec, valNode); err != nil {
					return nil, err
				}
				continue
			}
			val, err := yamlValue(valNode)
			if err != nil {
				return nil, err
			}
			rec.Set(keyNode.Value, val)
		}
		return rec, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return items, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return nil, fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
	}
}

// mergeYAML applies a "<<" merge key: keys from the merged mapping(s) are
// added unless already present.
func mergeYAML(rec *converter.Record, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		v, err := yamlValue(src)
		if err != nil {
			return err
		}
		merged, ok := v.(*converter.Record)
		if !ok {
			return fmt.Errorf("merge value at line %d is not a mapping", n.Line)
		}
		for _, k := range merged.Keys() {
			if _, exists := rec.Get(k); !exists {
				val, _ := merged.Get(k)
				rec.Set(k, val)
			}
		}
	}
	return nil
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!str", "!!binary", "!!timestamp":
		// timestamps stay in their source spelling
		return n.Value, nil
	case "!!int", "!!float", "!!bool":
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return n.Value, nil
	}
}

// --- TOML ---

// decodeTOML decodes a TOML document. A document whose only key holds an
// array of tables ([[records]]) decodes to that array; any other document
// is a single record.
func decodeTOML(data []byte) (any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var root map[string]any
	md, err := toml.Decode(string(data), &root)
	if err != nil {
		return nil, fmt.Errorf("%w: toml: %w", ErrDecode, err)
	}
	order := tomlKeyOrder(md.Keys())
	if len(root) == 1 {
		for key, v := range root {
			if tables, ok := v.([]map[string]any); ok {
				return tomlValue(tables, order, key), nil
			}
		}
	}
	return tomlValue(root, order, ""), nil
}

// tomlKeyOrder maps each table path to its keys in order of first
// appearance. Paths carry no array index, so all tables of one array
// share an order.
func tomlKeyOrder(keys []toml.Key) map[string][]string {
	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, k := range keys {
		if len(k) == 0 {
			continue
		}
		full := strings.Join(k, "\x00")
		if seen[full] {
			continue
		}
		seen[full] = true
		parent := strings.Join(k[:len(k)-1], "\x00")
		order[parent] = append(order[parent], k[len(k)-1])
	}
	return order
}

func tomlValue(v any, order map[string][]string, path string) any {
	switch v := v.(type) {
	case map[string]any:
		rec := converter.NewRecord(len(v))
		for _, k := range order[path] {
			if val, ok := v[k]; ok {
				rec.Set(k, tomlValue(val, order, tomlChild(path, k)))
			}
		}
		if rec.Len() < len(v) {
			var rest []string
			for k := range v {
				if _, ok := rec.Get(k); !ok {
					rest = append(rest, k)
				}
			}
			slices.Sort(rest)
			for _, k := range rest {
				rec.Set(k, tomlValue(v[k], order, tomlChild(path, k)))
			}
		}
		return rec
	case []map[string]any:
		items := make([]any, len(v))
		for i, t := range v {
			items[i] = tomlValue(t, order, path)
		}
		return items
	case []any:
		items := make([]any, len(v))
		for i, e := range v {
			items[i] = tomlValue(e, order, path)
		}
		return items
	default:
		return v
	}
}

func tomlChild(path, key string) string {
	if path == "" {
		return key
	}
	return path + "\x00" + key
}
