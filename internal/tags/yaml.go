package tags

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// FromYAML decodes a YAML mapping and writes its entries into dst. Documents
// that are empty or not a mapping contribute nothing.
func FromYAML(data []byte, dst Map) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	FromNode(&doc, dst)
	return nil
}

// FromNode writes the entries of a decoded YAML mapping into dst. Scalars are
// kept as written, nulls become empty strings and sequences of scalars are
// joined with commas. Nested mappings are skipped.
func FromNode(n *yaml.Node, dst Map) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := resolve(n.Content[i])
		if key == nil || key.Kind != yaml.ScalarNode {
			continue
		}
		if v, ok := scalarString(n.Content[i+1]); ok {
			dst[key.Value] = v
		}
	}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func scalarString(n *yaml.Node) (string, bool) {
	n = resolve(n)
	if n == nil {
		return "", true
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", true
		}
		return n.Value, true
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if s, ok := scalarString(c); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), true
	}
	return "", false
}
