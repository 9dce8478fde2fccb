package node

import (
	"github.com/sliink/flownode/internal/model"
)

// flowStrategy wires mode-specific behavior into the connection handlers
// and node entry points. Exactly one strategy is active per node, selected
// at construction; all methods run with the node lock held.
type flowStrategy interface {
	// pushRecord handles one record arriving on an initialized connection
	pushRecord(n *PluginNode, ci *ConnectionInterface, record model.Record)

	// interfaceClose handles a connection completing
	interfaceClose(n *PluginNode, ci *ConnectionInterface)

	// pushAllRecords handles the host asking the node to generate records
	pushAllRecords(n *PluginNode, limit int)
}

func strategyFor(mode model.Mode) flowStrategy {
	switch mode {
	case model.StreamMode:
		return streamStrategy{}
	case model.SourceMode:
		return sourceStrategy{}
	default:
		return batchStrategy{}
	}
}

// batchStrategy accumulates every record and runs the transformation once,
// after the last input closes, over the full accumulated buffers.
type batchStrategy struct{}

func (batchStrategy) pushRecord(n *PluginNode, ci *ConnectionInterface, record model.Record) {
	ci.accumulate(record)
}

func (batchStrategy) interfaceClose(n *PluginNode, ci *ConnectionInterface) {
	// A node that never fully initialized still completes its interfaces so
	// the run can shut down, but the transformation and flush are skipped.
	if !n.initialized {
		return
	}

	if !n.allInputsCompletedLocked() {
		return
	}

	n.negotiateForFlowLocked()
	n.hooks.ProcessData(n.inputMgr, n.outputMgr, n.state, n.logger)
	n.pushMetadataToOutputsLocked()
	n.flushOutputsLocked()
}

func (batchStrategy) pushAllRecords(n *PluginNode, limit int) {
	n.hooks.PushAllRecords(n, limit)
}

// streamStrategy runs the transformation once per incoming record. Before
// each accumulation every buffer on the node is cleared, so at most one
// record is resident node-wide and the transformation sees exactly the
// record that fired it.
type streamStrategy struct{}

func (streamStrategy) pushRecord(n *PluginNode, ci *ConnectionInterface, record model.Record) {
	n.clearAccumulatedLocked()
	ci.accumulate(record)

	n.negotiateForFlowLocked()
	n.hooks.ProcessData(n.inputMgr, n.outputMgr, n.state, n.logger)
	n.pushMetadataToOutputsLocked()
	n.flushOutputsLocked()
}

func (streamStrategy) interfaceClose(n *PluginNode, ci *ConnectionInterface) {
	n.hooks.InterfaceClose(n)
}

func (streamStrategy) pushAllRecords(n *PluginNode, limit int) {
	n.hooks.PushAllRecords(n, limit)
}

// sourceStrategy generates records with no incoming connections. The
// zero-required-inputs precondition is enforced by PushAllRecords, not here.
type sourceStrategy struct{}

func (sourceStrategy) pushRecord(n *PluginNode, ci *ConnectionInterface, record model.Record) {
	// Source topologies have no incoming connections; nothing to do.
}

func (sourceStrategy) interfaceClose(n *PluginNode, ci *ConnectionInterface) {
	n.hooks.InterfaceClose(n)
}

func (sourceStrategy) pushAllRecords(n *PluginNode, limit int) {
	n.negotiateForFlowLocked()
	n.hooks.ProcessData(n.inputMgr, n.outputMgr, n.state, n.logger)
	n.pushMetadataToOutputsLocked()
	n.flushOutputsLocked()
}
