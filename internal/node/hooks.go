package node

import (
	"log/slog"

	"github.com/sliink/flownode/internal/config"
	"github.com/sliink/flownode/internal/model"
)

// InitHook runs user initialization against the parsed tool configuration.
// Returning false marks the node uninitialized for the rest of the run.
type InitHook func(cfg *config.Tree, state *UserState, logger *slog.Logger) bool

// AddIncomingHook observes registration of an incoming connection
type AddIncomingHook func(n *PluginNode, connType, name string)

// AddOutgoingHook accepts or rejects an outgoing connection by name
type AddOutgoingHook func(n *PluginNode, name string) bool

// PushAllRecordsHook is the user generation callback for nodes whose mode
// does not rewire record generation
type PushAllRecordsHook func(n *PluginNode, limit int)

// CloseHook runs user teardown before output anchors are closed
type CloseHook func(n *PluginNode)

// InterfaceInitHook runs user per-connection initialization against the
// incoming schema. Returning false fails metadata negotiation for the run.
type InterfaceInitHook func(ci *ConnectionInterface, schema model.Schema) bool

// InterfaceCloseHook runs user per-connection teardown, passing the owning node
type InterfaceCloseHook func(n *PluginNode)

// ProgressHook observes upstream progress reports
type ProgressHook func(ci *ConnectionInterface, fraction float64)

// MetadataHook computes the output schema, setting each output anchor's
// schema through the output manager as a side effect
type MetadataHook func(in *InputManager, out *OutputManager, state *UserState, logger *slog.Logger)

// ProcessHook is the user data transformation. It reads accumulated input
// through the input manager and writes output records through the output
// manager; it never pushes downstream itself.
type ProcessHook func(in *InputManager, out *OutputManager, state *UserState, logger *slog.Logger)

// Hooks carries the optional user callbacks for a node. Nil slots default
// to no-ops at construction.
type Hooks struct {
	Init           InitHook
	AddIncoming    AddIncomingHook
	AddOutgoing    AddOutgoingHook
	PushAllRecords PushAllRecordsHook
	Close          CloseHook
	InterfaceInit  InterfaceInitHook
	InterfaceClose InterfaceCloseHook
	UpdateProgress ProgressHook
	BuildMetadata  MetadataHook
	ProcessData    ProcessHook
}

// withDefaults fills every nil hook slot with its no-op default
func (h Hooks) withDefaults() Hooks {
	if h.Init == nil {
		h.Init = func(*config.Tree, *UserState, *slog.Logger) bool { return true }
	}
	if h.AddIncoming == nil {
		h.AddIncoming = func(*PluginNode, string, string) {}
	}
	if h.AddOutgoing == nil {
		h.AddOutgoing = func(*PluginNode, string) bool { return true }
	}
	if h.PushAllRecords == nil {
		h.PushAllRecords = func(*PluginNode, int) {}
	}
	if h.Close == nil {
		h.Close = func(*PluginNode) {}
	}
	if h.InterfaceInit == nil {
		h.InterfaceInit = func(*ConnectionInterface, model.Schema) bool { return true }
	}
	if h.InterfaceClose == nil {
		h.InterfaceClose = func(*PluginNode) {}
	}
	if h.UpdateProgress == nil {
		h.UpdateProgress = func(*ConnectionInterface, float64) {}
	}
	if h.BuildMetadata == nil {
		h.BuildMetadata = func(*InputManager, *OutputManager, *UserState, *slog.Logger) {}
	}
	if h.ProcessData == nil {
		h.ProcessData = func(*InputManager, *OutputManager, *UserState, *slog.Logger) {}
	}
	return h
}

// UserState is an opaque mutable bag for values the user carries between
// hooks within one run
type UserState struct {
	values map[string]any
}

func newUserState() *UserState {
	return &UserState{values: make(map[string]any)}
}

// Set stores a value under a key
func (s *UserState) Set(key string, value any) {
	s.values[key] = value
}

// Get retrieves a value by key
func (s *UserState) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Delete removes a key
func (s *UserState) Delete(key string) {
	delete(s.values, key)
}
