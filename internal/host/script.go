package host

import (
	"github.com/sliink/flownode/internal/model"
)

// StepKind identifies one entry-point invocation in a script
type StepKind string

const (
	// StepInit invokes node initialization with a raw configuration payload
	StepInit StepKind = "INIT"
	// StepAddIncoming registers an incoming connection
	StepAddIncoming StepKind = "ADD_INCOMING"
	// StepAddOutgoing offers an outgoing connection
	StepAddOutgoing StepKind = "ADD_OUTGOING"
	// StepInterfaceInit negotiates a connection's input schema
	StepInterfaceInit StepKind = "INTERFACE_INIT"
	// StepPushRecord delivers one record to a connection
	StepPushRecord StepKind = "PUSH_RECORD"
	// StepProgress reports upstream progress on a connection
	StepProgress StepKind = "PROGRESS"
	// StepInterfaceClose closes a connection
	StepInterfaceClose StepKind = "INTERFACE_CLOSE"
	// StepPushAll asks the node to generate records (source topology)
	StepPushAll StepKind = "PUSH_ALL"
	// StepClose finishes the run
	StepClose StepKind = "CLOSE"
)

// Step is one entry-point invocation. Connection identifies the interface
// handle a step targets; it is assigned by the AddIncoming step that
// created it (defaulting to the anchor name).
type Step struct {
	Kind       StepKind
	Config     []byte
	ConnType   string
	Anchor     string
	Connection string
	Schema     model.Schema
	Record     model.Record
	Fraction   float64
	Limit      int
	HasErrors  bool
}

// Script is an ordered sequence of entry-point invocations, standing in
// for the order the real engine would choose
type Script struct {
	Steps []Step
}

// NewScript creates an empty script
func NewScript() *Script {
	return &Script{}
}

// Init appends a node initialization step
func (s *Script) Init(rawConfig []byte) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepInit, Config: rawConfig})
	return s
}

// AddIncoming appends an incoming connection registration. The connection
// id names the handle for later steps; pass "" to use the anchor name.
func (s *Script) AddIncoming(connType, anchor, connection string) *Script {
	if connection == "" {
		connection = anchor
	}
	s.Steps = append(s.Steps, Step{
		Kind:       StepAddIncoming,
		ConnType:   connType,
		Anchor:     anchor,
		Connection: connection,
	})
	return s
}

// AddOutgoing appends an outgoing connection offer
func (s *Script) AddOutgoing(anchor string) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepAddOutgoing, Anchor: anchor})
	return s
}

// InterfaceInit appends schema negotiation on a connection
func (s *Script) InterfaceInit(connection string, schema model.Schema) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepInterfaceInit, Connection: connection, Schema: schema})
	return s
}

// Push appends a record delivery on a connection
func (s *Script) Push(connection string, record model.Record) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepPushRecord, Connection: connection, Record: record})
	return s
}

// Progress appends a progress report on a connection
func (s *Script) Progress(connection string, fraction float64) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepProgress, Connection: connection, Fraction: fraction})
	return s
}

// CloseInterface appends a connection close
func (s *Script) CloseInterface(connection string) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepInterfaceClose, Connection: connection})
	return s
}

// PushAll appends a record generation request
func (s *Script) PushAll(limit int) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepPushAll, Limit: limit})
	return s
}

// Close appends the final node close
func (s *Script) Close(hasErrors bool) *Script {
	s.Steps = append(s.Steps, Step{Kind: StepClose, HasErrors: hasErrors})
	return s
}
