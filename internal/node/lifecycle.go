package node

import (
	"github.com/sliink/flownode/internal/config"
)

// Node-level entry points. The host engine is the sole scheduler: it calls
// Init before anything else, registers connections, drives record flow, and
// calls Close last. Each entry point runs to completion before returning.

// Init parses the raw tool configuration and runs the user init hook. A
// parse failure is reported through the logger and leaves the node
// uninitialized; nothing is raised past this boundary.
func (n *PluginNode) Init(rawConfig []byte) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.initAttempted = true

	tree, err := config.Parse(rawConfig)
	if err != nil {
		n.logger.Error("tool configuration rejected",
			"tool", n.toolName,
			"run_id", n.runID,
			"error", err)
		n.initialized = false
		return false
	}
	n.cfg = tree

	n.initialized = n.hooks.Init(tree, n.state, n.logger)
	return n.initialized
}

// AddIncomingConnection registers one upstream connection against the named
// input anchor and returns the interface handle the host will drive.
func (n *PluginNode) AddIncomingConnection(connType, name string) *ConnectionInterface {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.hooks.AddIncoming(n, connType, name)

	ci := &ConnectionInterface{node: n, anchorName: name, connType: connType}
	anchor := n.inputAnchorLocked(name)
	anchor.connections = append(anchor.connections, ci)
	n.interfaces = append(n.interfaces, ci)

	return ci
}

// PushAllRecords drives record generation for source topologies. Valid only
// when the node declares no required inputs; calling it otherwise is a
// wiring defect and panics with ErrMissingIncoming after reporting it. In
// dry-run mode it succeeds immediately without side effects.
func (n *PluginNode) PushAllRecords(limit int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.updateOnly {
		return true
	}

	if len(n.requiredInputs) == 0 {
		n.strategy.pushAllRecords(n, limit)
		return true
	}

	n.logger.Error("push all records invoked with required inputs declared",
		"tool", n.toolName,
		"run_id", n.runID,
		"required_inputs", n.requiredInputs)
	panic(ErrMissingIncoming)
}

// AddOutgoingConnection offers the named output anchor to the user hook;
// the returned acceptance signal tells the host whether to wire it. An
// accepted name not declared at construction is registered here, since the
// host is authoritative about wiring.
func (n *PluginNode) AddOutgoingConnection(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.hooks.AddOutgoing(n, name) {
		return false
	}

	n.registerOutputAnchorLocked(name)
	return true
}

// Close finishes the run. The user close hook runs and output anchors are
// closed only once every registered interface has completed; this holds
// regardless of whether initialization succeeded, so downstream anchors are
// never left open by a failed run.
func (n *PluginNode) Close(hasErrors bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.allInputsCompletedLocked() {
		n.hooks.Close(n)
		n.closeAllOutputsLocked()
	}

	n.closed = true
}
