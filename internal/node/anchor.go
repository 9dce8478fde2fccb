package node

import (
	"github.com/sliink/flownode/internal/model"
)

// RecordSink receives schema and records pushed downstream by output
// anchors. The transport encoding between nodes lives behind this boundary;
// the node only guarantees sequencing: schema first, then records, then close.
type RecordSink interface {
	// PushSchema delivers the negotiated schema for an output anchor
	PushSchema(anchor string, schema model.Schema)

	// PushRecord delivers one record on an output anchor
	PushRecord(anchor string, record model.Record)

	// CloseAnchor signals that no more data will arrive on an output anchor
	CloseAnchor(anchor string)
}

// discardSink drops everything pushed at it
type discardSink struct{}

func (discardSink) PushSchema(string, model.Schema) {}
func (discardSink) PushRecord(string, model.Record) {}
func (discardSink) CloseAnchor(string)              {}

// Anchor is a named input port aggregating one or more incoming connections
type Anchor struct {
	name        string
	direction   model.Direction
	connections []*ConnectionInterface
}

// Name returns the anchor's name
func (a *Anchor) Name() string { return a.name }

// Direction returns the anchor's direction
func (a *Anchor) Direction() model.Direction { return a.direction }

// Connections returns the anchor's registered connections in order
func (a *Anchor) Connections() []*ConnectionInterface {
	out := make([]*ConnectionInterface, len(a.connections))
	copy(out, a.connections)
	return out
}

// Schema returns the input schema of the anchor's first initialized connection
func (a *Anchor) Schema() model.Schema {
	for _, ci := range a.connections {
		if ci.initialized {
			return ci.schema.Clone()
		}
	}
	return model.Schema{}
}

// Records returns the accumulated records of all connections on this
// anchor, in connection registration order
func (a *Anchor) Records() []model.Record {
	var out []model.Record
	for _, ci := range a.connections {
		out = append(out, ci.buffer...)
	}
	return out
}

// Table returns the accumulated records as a columnar table
func (a *Anchor) Table() model.Table {
	return model.NewTable(a.Schema(), a.Records())
}

// OutputAnchor is a named output port. It buffers records written by the
// user transformation and pushes them to the sink only after the negotiated
// schema has been pushed.
type OutputAnchor struct {
	name           string
	schema         model.Schema
	hasSchema      bool
	pending        []model.Record
	sink           RecordSink
	metadataPushed bool
	closed         bool
	flushed        int
}

// Name returns the anchor's name
func (a *OutputAnchor) Name() string { return a.name }

// Direction returns the anchor's direction; output anchors are always OUT
func (a *OutputAnchor) Direction() model.Direction { return model.OutDirection }

// Schema returns the schema set for this anchor
func (a *OutputAnchor) Schema() model.Schema { return a.schema.Clone() }

// SetSchema records the output schema for this anchor. Called from the
// user metadata hook; the node pushes it downstream exactly once per run.
func (a *OutputAnchor) SetSchema(schema model.Schema) {
	a.schema = schema.Clone()
	a.hasSchema = true
}

// Write buffers records for the next flush
func (a *OutputAnchor) Write(records ...model.Record) {
	a.pending = append(a.pending, records...)
}

// WriteTable sets the anchor's schema from a table and buffers its rows
// behind any records already pending
func (a *OutputAnchor) WriteTable(t model.Table) {
	a.SetSchema(t.Schema)
	a.pending = append(a.pending, t.Records()...)
}

// pushMetadata pushes the schema downstream once per run
func (a *OutputAnchor) pushMetadata() {
	if a.metadataPushed || !a.hasSchema {
		return
	}
	a.sink.PushSchema(a.name, a.schema)
	a.metadataPushed = true
}

// flush emits buffered records downstream. Records only flow after the
// schema has been pushed for this run.
func (a *OutputAnchor) flush() {
	if !a.metadataPushed {
		return
	}
	for _, rec := range a.pending {
		a.sink.PushRecord(a.name, rec)
	}
	a.flushed += len(a.pending)
	a.pending = nil
}

// closeAnchor signals downstream that the anchor is done, once
func (a *OutputAnchor) closeAnchor() {
	if a.closed {
		return
	}
	a.closed = true
	a.sink.CloseAnchor(a.name)
}
