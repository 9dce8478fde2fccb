package node

import (
	"github.com/sliink/flownode/internal/model"
)

// ConnectionInterface is one upstream producer feeding an input anchor. The
// host drives its handlers directly: Init before the first PushRecord,
// Close after the last. The back-reference to the owning node is
// non-owning; the node outlives all of its interfaces.
type ConnectionInterface struct {
	node       *PluginNode
	anchorName string
	connType   string

	schema      model.Schema
	initialized bool
	completed   bool
	buffer      []model.Record
}

// AnchorName returns the input anchor this connection feeds
func (ci *ConnectionInterface) AnchorName() string { return ci.anchorName }

// Type returns the connection type the host registered
func (ci *ConnectionInterface) Type() string { return ci.connType }

// Node returns the owning node
func (ci *ConnectionInterface) Node() *PluginNode { return ci.node }

// The accessors below do not take the node lock: hooks run while it is
// held and receive interface handles. Concurrent host-side inspection goes
// through PluginNode.Snapshot instead.

// Schema returns the negotiated input schema
func (ci *ConnectionInterface) Schema() model.Schema {
	return ci.schema.Clone()
}

// Initialized reports whether the connection negotiated metadata successfully
func (ci *ConnectionInterface) Initialized() bool {
	return ci.initialized
}

// Completed reports whether the connection has closed
func (ci *ConnectionInterface) Completed() bool {
	return ci.completed
}

// Records returns a copy of the connection's accumulated records
func (ci *ConnectionInterface) Records() []model.Record {
	out := make([]model.Record, len(ci.buffer))
	copy(out, ci.buffer)
	return out
}

// Init captures the incoming schema and runs the user per-connection init
// hook. A false return from the hook marks both the connection and the
// owning node uninitialized, short-circuiting all later record flow.
//
// In dry-run mode, once every required input has negotiated metadata, this
// is the trigger that fires metadata negotiation and pushes the computed
// schema to every output anchor; no records will ever flow to do it.
func (ci *ConnectionInterface) Init(schema model.Schema) bool {
	n := ci.node
	n.mu.Lock()
	defer n.mu.Unlock()

	ci.schema = schema.Clone()
	ci.initialized = true

	if !n.hooks.InterfaceInit(ci, schema) {
		ci.initialized = false
		n.initialized = false
		return false
	}

	if n.updateOnly && n.allRequiredInputsInitializedLocked() {
		n.negotiateMetadataLocked()
		n.pushMetadataToOutputsLocked()
	}

	return true
}

// PushRecord delivers one record to the connection. It is a no-op
// returning false when the node is uninitialized or in dry-run mode;
// otherwise the active flow strategy decides what happens.
func (ci *ConnectionInterface) PushRecord(record model.Record) bool {
	n := ci.node
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.initialized || n.updateOnly {
		return false
	}

	n.strategy.pushRecord(n, ci, record)
	return true
}

// UpdateProgress forwards an upstream progress fraction to node-level
// progress tracking and the user hook. Purely observational.
func (ci *ConnectionInterface) UpdateProgress(fraction float64) {
	n := ci.node
	n.mu.Lock()
	defer n.mu.Unlock()

	n.progress = fraction
	n.hooks.UpdateProgress(ci, fraction)
}

// Close marks the connection completed and hands control to the active
// flow strategy. No-op in dry-run mode. A second close is a host defect:
// it is reported and the user hook is not re-run.
func (ci *ConnectionInterface) Close() {
	n := ci.node
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.updateOnly {
		return
	}

	if ci.completed {
		n.logger.Error("incoming connection closed twice",
			"tool", n.toolName,
			"run_id", n.runID,
			"anchor", ci.anchorName)
		return
	}

	ci.completed = true
	n.strategy.interfaceClose(n, ci)
}

// accumulate appends a record to the connection's buffer
func (ci *ConnectionInterface) accumulate(record model.Record) {
	ci.buffer = append(ci.buffer, record)
}

// clearAccumulated empties the connection's buffer
func (ci *ConnectionInterface) clearAccumulated() {
	ci.buffer = ci.buffer[:0]
}
