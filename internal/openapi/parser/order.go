package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// indexPropertyOrder records the key order of every "properties" mapping in
// the raw document, keyed by JSON pointer. kin-openapi decodes properties
// into Go maps, so declaration order is only recoverable from the node tree.
func indexPropertyOrder(raw []byte) (map[string][]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("openapi parser: index property order: %w", err)
	}
	index := make(map[string][]string)
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	walkOrder(root, "#", false, index)
	return index, nil
}

func walkOrder(node *yaml.Node, at string, isProperties bool, index map[string][]string) {
	switch node.Kind {
	case yaml.MappingNode:
		var keys []string
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			keys = append(keys, key)
			walkOrder(node.Content[i+1], pointer(at, key), key == "properties" && !isProperties, index)
		}
		if isProperties {
			index[at] = keys
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			walkOrder(item, pointer(at, fmt.Sprint(i)), false, index)
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			walkOrder(node.Alias, at, isProperties, index)
		}
	}
}

// pointer appends escaped segments to a JSON pointer.
func pointer(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(strings.NewReplacer("~", "~0", "/", "~1").Replace(segment))
	}
	return b.String()
}
