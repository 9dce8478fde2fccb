package node

// Metadata negotiation: the one-time computation of output schema, required
// before any data flush. Two trigger paths exist: the flow strategies
// (batch close, stream push, source generate) and the dry-run trigger in
// ConnectionInterface.Init. A single negotiated flag makes them mutually
// exclusive in effect and bounds the user hook to one invocation per run.

// negotiateMetadataLocked invokes the user metadata hook at most once per
// run. The hook is expected to set each output anchor's schema through the
// output manager; its contents are not interpreted here.
func (n *PluginNode) negotiateMetadataLocked() {
	if n.negotiated {
		return
	}
	n.negotiated = true
	n.hooks.BuildMetadata(n.inputMgr, n.outputMgr, n.state, n.logger)
}

// negotiateForFlowLocked is the strategy-path trigger. Dry runs never
// negotiate from record flow; their only trigger is interface init.
func (n *PluginNode) negotiateForFlowLocked() {
	if n.updateOnly {
		return
	}
	n.negotiateMetadataLocked()
}
