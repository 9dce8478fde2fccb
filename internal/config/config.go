// Package config parses raw tool configuration payloads into an ordered
// key to value tree. Key order is preserved as written, which callers rely
// on when configuration describes ordered anchors.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tree is an ordered key to value configuration tree
type Tree struct {
	node *yaml.Node
}

// Parse reads a raw configuration payload into a tree
func Parse(raw []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	// An empty payload is a valid, empty configuration
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &Tree{node: emptyMapping()}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("configuration root must be a mapping, got %s", kindName(root.Kind))
	}

	return &Tree{node: root}, nil
}

// Keys returns the tree's top-level keys in document order
func (t *Tree) Keys() []string {
	if t == nil || t.node == nil {
		return nil
	}

	keys := make([]string, 0, len(t.node.Content)/2)
	for i := 0; i+1 < len(t.node.Content); i += 2 {
		keys = append(keys, t.node.Content[i].Value)
	}
	return keys
}

// Child returns the subtree at a dotted path
func (t *Tree) Child(path string) (*Tree, bool) {
	node := t.lookup(path)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, false
	}
	return &Tree{node: node}, true
}

// Get retrieves a configuration value at a dotted path
func (t *Tree) Get(path string, defaultValue any) any {
	node := t.lookup(path)
	if node == nil {
		return defaultValue
	}

	var value any
	if err := node.Decode(&value); err != nil {
		return defaultValue
	}
	return value
}

// GetString retrieves a string value at a dotted path
func (t *Tree) GetString(path, defaultValue string) string {
	node := t.lookup(path)
	if node == nil || node.Kind != yaml.ScalarNode {
		return defaultValue
	}

	var value string
	if err := node.Decode(&value); err != nil {
		return defaultValue
	}
	return value
}

// GetInt retrieves an integer value at a dotted path
func (t *Tree) GetInt(path string, defaultValue int) int {
	node := t.lookup(path)
	if node == nil {
		return defaultValue
	}

	var value int
	if err := node.Decode(&value); err != nil {
		return defaultValue
	}
	return value
}

// GetBool retrieves a boolean value at a dotted path
func (t *Tree) GetBool(path string, defaultValue bool) bool {
	node := t.lookup(path)
	if node == nil {
		return defaultValue
	}

	var value bool
	if err := node.Decode(&value); err != nil {
		return defaultValue
	}
	return value
}

// GetStringSlice retrieves a list of strings at a dotted path
func (t *Tree) GetStringSlice(path string) []string {
	node := t.lookup(path)
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}

	values := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		var value string
		if err := item.Decode(&value); err != nil {
			continue
		}
		values = append(values, value)
	}
	return values
}

// Decode unmarshals the tree into a destination value
func (t *Tree) Decode(out any) error {
	if t == nil || t.node == nil {
		return fmt.Errorf("cannot decode empty configuration")
	}
	if err := t.node.Decode(out); err != nil {
		return fmt.Errorf("error decoding configuration: %w", err)
	}
	return nil
}

// Has reports whether a dotted path exists in the tree
func (t *Tree) Has(path string) bool {
	return t.lookup(path) != nil
}

// lookup navigates a dotted path through nested mappings
func (t *Tree) lookup(path string) *yaml.Node {
	if t == nil || t.node == nil {
		return nil
	}
	if path == "" {
		return t.node
	}

	current := t.node
	for _, part := range strings.Split(path, ".") {
		if current.Kind != yaml.MappingNode {
			return nil
		}
		current = childByKey(current, part)
		if current == nil {
			return nil
		}
	}
	return current
}

// childByKey finds the value node for a key within a mapping node
func childByKey(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func emptyMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
