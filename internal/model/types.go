package model

// Mode selects the record-flow strategy for a node
type Mode string

const (
	// BatchMode accumulates all records per connection and runs the
	// transformation once after every input has closed
	BatchMode Mode = "batch"
	// StreamMode runs the transformation once per incoming record with at
	// most one record resident node-wide
	StreamMode Mode = "stream"
	// SourceMode generates records with no incoming connections
	SourceMode Mode = "source"
)

// Valid reports whether the mode is one of the recognized strategies
func (m Mode) Valid() bool {
	switch m {
	case BatchMode, StreamMode, SourceMode:
		return true
	}
	return false
}

// InputRepresentation selects how accumulated input data is handed to the
// user transformation
type InputRepresentation string

const (
	// ListRepresentation hands records to the transformation as a slice
	ListRepresentation InputRepresentation = "list"
	// TableRepresentation hands records to the transformation as a columnar table
	TableRepresentation InputRepresentation = "table"
)

// Direction indicates which side of the node an anchor sits on
type Direction string

const (
	// InDirection marks an input anchor
	InDirection Direction = "IN"
	// OutDirection marks an output anchor
	OutDirection Direction = "OUT"
)

// NodeStatus represents the current lifecycle state of a node
type NodeStatus string

const (
	// StatusUninitialized indicates the node has not been initialized
	StatusUninitialized NodeStatus = "UNINITIALIZED"
	// StatusInitialized indicates node init succeeded
	StatusInitialized NodeStatus = "INITIALIZED"
	// StatusFailed indicates node or interface init failed
	StatusFailed NodeStatus = "FAILED"
	// StatusClosed indicates the node has been closed
	StatusClosed NodeStatus = "CLOSED"
)

// EventType represents the type of node lifecycle event
type EventType string

const (
	// EventNodeInit indicates node initialization completed
	EventNodeInit EventType = "NODE_INIT"
	// EventConnectionAdded indicates an incoming connection was registered
	EventConnectionAdded EventType = "CONNECTION_ADDED"
	// EventRecordPushed indicates a record was delivered to an interface
	EventRecordPushed EventType = "RECORD_PUSHED"
	// EventMetadataNegotiated indicates the output schema was computed
	EventMetadataNegotiated EventType = "METADATA_NEGOTIATED"
	// EventOutputFlushed indicates buffered output records were emitted
	EventOutputFlushed EventType = "OUTPUT_FLUSHED"
	// EventInterfaceClosed indicates an incoming connection closed
	EventInterfaceClosed EventType = "INTERFACE_CLOSED"
	// EventNodeClosed indicates the node finished teardown
	EventNodeClosed EventType = "NODE_CLOSED"
	// EventError indicates an error has occurred
	EventError EventType = "ERROR"
)
