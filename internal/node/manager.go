package node

import (
	"github.com/sliink/flownode/internal/model"
)

// InputManager exposes the node's input anchors to user hooks. Hooks run
// under the node lock, so access through the manager needs no further
// synchronization.
type InputManager struct {
	node *PluginNode
}

// Anchor returns the named input anchor
func (m *InputManager) Anchor(name string) (*Anchor, bool) {
	anchor, exists := m.node.inputAnchors[name]
	return anchor, exists
}

// AnchorNames returns the input anchor names in registration order
func (m *InputManager) AnchorNames() []string {
	out := make([]string, len(m.node.inputOrder))
	copy(out, m.node.inputOrder)
	return out
}

// Representation returns the input representation the node was built with
func (m *InputManager) Representation() model.InputRepresentation {
	return m.node.inputRepr
}

// OutputManager exposes the node's output anchors to user hooks
type OutputManager struct {
	node *PluginNode
}

// Anchor returns the named output anchor
func (m *OutputManager) Anchor(name string) (*OutputAnchor, bool) {
	anchor, exists := m.node.outputAnchors[name]
	return anchor, exists
}

// AnchorNames returns the output anchor names in declaration order
func (m *OutputManager) AnchorNames() []string {
	out := make([]string, len(m.node.outputOrder))
	copy(out, m.node.outputOrder)
	return out
}
