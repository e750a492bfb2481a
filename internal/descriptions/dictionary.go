package descriptions

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const rootKey = "description"

// Dictionary maps a description key to its display template. It is built
// once and is read-only afterwards, so it is safe to share between workers.
type Dictionary struct {
	entries map[string]*string
}

// Load reads the dictionary from a YAML file whose root object holds a
// "description" mapping.
func Load(path string) (*Dictionary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read description dictionary %s: %w", path, err)
	}

	dict, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse description dictionary %s: %w", path, err)
	}
	return dict, nil
}

func Parse(raw []byte) (*Dictionary, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("root is not an object")
	}

	section := mappingValue(root, rootKey)
	if section == nil {
		return nil, fmt.Errorf("missing %q section", rootKey)
	}
	if section.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%q section is not an object", rootKey)
	}

	entries := make(map[string]*string, len(section.Content)/2)
	for i := 0; i+1 < len(section.Content); i += 2 {
		key, value := section.Content[i], section.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}
		if value.Kind != yaml.ScalarNode {
			template, err := renderFlow(value)
			if err != nil {
				return nil, fmt.Errorf("template for %q: %w", key.Value, err)
			}
			entries[key.Value] = &template
			continue
		}
		if value.Tag == "!!null" {
			entries[key.Value] = nil
			continue
		}
		template := value.Value
		entries[key.Value] = &template
	}

	return &Dictionary{entries: entries}, nil
}

// New builds a dictionary from an in-memory map.
func New(entries map[string]string) *Dictionary {
	d := &Dictionary{entries: make(map[string]*string, len(entries))}
	for k, v := range entries {
		template := v
		d.entries[k] = &template
	}
	return d
}

// Lookup returns the template for key. Keys present with a null value are
// reported as not found.
func (d *Dictionary) Lookup(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	template, ok := d.entries[key]
	if !ok || template == nil {
		return "", false
	}
	return *template, true
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// renderFlow converts a list or mapping to its single-line text form, e.g.
// "[a, b]" or "{b: c}".
func renderFlow(value *yaml.Node) (string, error) {
	flow := *value
	flow.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&flow)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
