// Package node implements the lifecycle and record-flow controller for a
// single dataflow node driven by an external host engine. The host owns
// scheduling and invokes the node's entry points; the node enforces the
// sequencing contract: single initialization, metadata before data,
// per-connection completion tracking and dry-run short-circuiting.
package node

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sliink/flownode/internal/config"
	"github.com/sliink/flownode/internal/model"
)

var (
	// ErrUnknownMode is returned when a node is constructed with an
	// unrecognized flow mode
	ErrUnknownMode = errors.New("unknown flow mode")

	// ErrMissingIncoming is the panic value when PushAllRecords is invoked
	// on a node that declares required inputs
	ErrMissingIncoming = errors.New("missing incoming connection(s)")
)

// Options configures a PluginNode at construction
type Options struct {
	// ToolName identifies the tool this node runs
	ToolName string

	// Mode selects the flow strategy; construction fails on unknown modes
	Mode model.Mode

	// InputRepresentation selects list or table input views (default list)
	InputRepresentation model.InputRepresentation

	// RequiredInputs names the input anchors that must be wired for record
	// flow; a non-empty set makes PushAllRecords a fatal misuse
	RequiredInputs []string

	// OutputAnchors declares the node's output anchors in order
	OutputAnchors []string

	// UpdateOnly runs the node in dry-run mode: only schema is computed,
	// no data transformation executes
	UpdateOnly bool

	// Hooks are the user callbacks; nil slots default to no-ops
	Hooks Hooks

	// Logger receives error and diagnostic output (default slog.Default)
	Logger *slog.Logger

	// Sink receives pushed schema and records per output anchor
	// (default discards)
	Sink RecordSink
}

// PluginNode holds the run-level state of one dataflow node. All entry
// points serialize on a single node-wide mutex, so the host may drive
// interfaces of one node from multiple threads. Hooks run while that lock
// is held and must only touch the node through the arguments they receive.
type PluginNode struct {
	toolName  string
	mode      model.Mode
	inputRepr model.InputRepresentation
	runID     string
	hooks     Hooks
	logger    *slog.Logger
	sink      RecordSink
	strategy  flowStrategy

	mu             sync.Mutex
	cfg            *config.Tree
	state          *UserState
	initAttempted  bool
	initialized    bool
	updateOnly     bool
	negotiated     bool
	closed         bool
	progress       float64
	requiredInputs []string
	inputAnchors   map[string]*Anchor
	inputOrder     []string
	outputAnchors  map[string]*OutputAnchor
	outputOrder    []string
	interfaces     []*ConnectionInterface
	inputMgr       *InputManager
	outputMgr      *OutputManager
}

// New constructs a node for one run. An unrecognized mode fails here,
// before the host drives any entry point.
func New(opts Options) (*PluginNode, error) {
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sink := opts.Sink
	if sink == nil {
		sink = discardSink{}
	}

	repr := opts.InputRepresentation
	if repr == "" {
		repr = model.ListRepresentation
	}

	n := &PluginNode{
		toolName:       opts.ToolName,
		mode:           opts.Mode,
		inputRepr:      repr,
		runID:          uuid.NewString(),
		hooks:          opts.Hooks.withDefaults(),
		logger:         logger,
		sink:           sink,
		strategy:       strategyFor(opts.Mode),
		state:          newUserState(),
		updateOnly:     opts.UpdateOnly,
		requiredInputs: append([]string(nil), opts.RequiredInputs...),
		inputAnchors:   make(map[string]*Anchor),
		outputAnchors:  make(map[string]*OutputAnchor),
	}
	n.inputMgr = &InputManager{node: n}
	n.outputMgr = &OutputManager{node: n}

	for _, name := range opts.OutputAnchors {
		n.registerOutputAnchorLocked(name)
	}

	return n, nil
}

// ToolName returns the name of the tool this node runs
func (n *PluginNode) ToolName() string { return n.toolName }

// Mode returns the node's flow mode
func (n *PluginNode) Mode() model.Mode { return n.mode }

// RunID returns the unique identifier of this run
func (n *PluginNode) RunID() string { return n.runID }

// Logger returns the node's logger collaborator
func (n *PluginNode) Logger() *slog.Logger { return n.logger }

// State returns the opaque user state bag
func (n *PluginNode) State() *UserState { return n.state }

// Inputs returns the input manager consumed by user hooks
func (n *PluginNode) Inputs() *InputManager { return n.inputMgr }

// Outputs returns the output manager consumed by user hooks
func (n *PluginNode) Outputs() *OutputManager { return n.outputMgr }

// The accessors below do not take the node lock: hooks run while it is
// held and receive the node. Concurrent host-side inspection goes through
// Snapshot instead.

// Config returns the parsed tool configuration, nil before Init
func (n *PluginNode) Config() *config.Tree {
	return n.cfg
}

// Initialized reports whether node and interface initialization has
// succeeded so far this run
func (n *PluginNode) Initialized() bool {
	return n.initialized
}

// UpdateOnly reports whether the node runs in dry-run mode
func (n *PluginNode) UpdateOnly() bool { return n.updateOnly }

// Progress returns the last reported upstream progress fraction
func (n *PluginNode) Progress() float64 {
	return n.progress
}

// Status derives the node's lifecycle status. Hook context only: the entry
// point that invoked the hook already holds the node lock, which is why the
// locked helper is safe to call here without taking it again.
func (n *PluginNode) Status() model.NodeStatus {
	return n.statusLocked()
}

// AllInputsCompleted holds iff every currently registered interface has
// completed, independent of the order the host drove them in. Hook context
// only, like Status.
func (n *PluginNode) AllInputsCompleted() bool {
	return n.allInputsCompletedLocked()
}

func (n *PluginNode) statusLocked() model.NodeStatus {
	switch {
	case n.closed:
		return model.StatusClosed
	case n.initialized:
		return model.StatusInitialized
	case n.initAttempted:
		return model.StatusFailed
	default:
		return model.StatusUninitialized
	}
}

// registerOutputAnchorLocked adds an output anchor if not already present
func (n *PluginNode) registerOutputAnchorLocked(name string) *OutputAnchor {
	if anchor, exists := n.outputAnchors[name]; exists {
		return anchor
	}
	anchor := &OutputAnchor{name: name, sink: n.sink}
	n.outputAnchors[name] = anchor
	n.outputOrder = append(n.outputOrder, name)
	return anchor
}

// inputAnchorLocked returns the named input anchor, creating it on first use
func (n *PluginNode) inputAnchorLocked(name string) *Anchor {
	if anchor, exists := n.inputAnchors[name]; exists {
		return anchor
	}
	anchor := &Anchor{name: name, direction: model.InDirection}
	n.inputAnchors[name] = anchor
	n.inputOrder = append(n.inputOrder, name)
	return anchor
}

// allInputsCompletedLocked holds iff every registered interface completed
func (n *PluginNode) allInputsCompletedLocked() bool {
	for _, ci := range n.interfaces {
		if !ci.completed {
			return false
		}
	}
	return true
}

// allRequiredInputsInitializedLocked holds iff every required anchor has at
// least one connection and all of its connections negotiated metadata
func (n *PluginNode) allRequiredInputsInitializedLocked() bool {
	for _, name := range n.requiredInputs {
		anchor, exists := n.inputAnchors[name]
		if !exists || len(anchor.connections) == 0 {
			return false
		}
		for _, ci := range anchor.connections {
			if !ci.initialized {
				return false
			}
		}
	}
	return true
}

// clearAccumulatedLocked empties the accumulation buffer of every interface
func (n *PluginNode) clearAccumulatedLocked() {
	for _, ci := range n.interfaces {
		ci.clearAccumulated()
	}
}

// pushMetadataToOutputsLocked pushes the negotiated schema downstream on
// every output anchor
func (n *PluginNode) pushMetadataToOutputsLocked() {
	for _, name := range n.outputOrder {
		n.outputAnchors[name].pushMetadata()
	}
}

// flushOutputsLocked emits buffered records on every output anchor
func (n *PluginNode) flushOutputsLocked() {
	for _, name := range n.outputOrder {
		n.outputAnchors[name].flush()
	}
}

// closeAllOutputsLocked closes every output anchor downstream
func (n *PluginNode) closeAllOutputsLocked() {
	for _, name := range n.outputOrder {
		n.outputAnchors[name].closeAnchor()
	}
}

// InterfaceSnapshot is a point-in-time view of one incoming connection
type InterfaceSnapshot struct {
	Anchor      string `json:"anchor"`
	Type        string `json:"type"`
	Initialized bool   `json:"initialized"`
	Completed   bool   `json:"completed"`
	Buffered    int    `json:"buffered"`
}

// OutputSnapshot is a point-in-time view of one output anchor
type OutputSnapshot struct {
	Name           string          `json:"name"`
	Direction      model.Direction `json:"direction"`
	Schema         model.Schema    `json:"schema"`
	MetadataPushed bool            `json:"metadata_pushed"`
	Buffered       int             `json:"buffered"`
	Flushed        int             `json:"flushed"`
	Closed         bool            `json:"closed"`
}

// Snapshot is a point-in-time view of the node's run state
type Snapshot struct {
	ToolName   string              `json:"tool_name"`
	RunID      string              `json:"run_id"`
	Mode       model.Mode          `json:"mode"`
	Status     model.NodeStatus    `json:"status"`
	UpdateOnly bool                `json:"update_only"`
	Negotiated bool                `json:"negotiated"`
	Progress   float64             `json:"progress"`
	Interfaces []InterfaceSnapshot `json:"interfaces"`
	Outputs    []OutputSnapshot    `json:"outputs"`
}

// Snapshot captures the node's current state for inspection
func (n *PluginNode) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	snap := Snapshot{
		ToolName:   n.toolName,
		RunID:      n.runID,
		Mode:       n.mode,
		Status:     n.statusLocked(),
		UpdateOnly: n.updateOnly,
		Negotiated: n.negotiated,
		Progress:   n.progress,
	}

	for _, ci := range n.interfaces {
		snap.Interfaces = append(snap.Interfaces, InterfaceSnapshot{
			Anchor:      ci.anchorName,
			Type:        ci.connType,
			Initialized: ci.initialized,
			Completed:   ci.completed,
			Buffered:    len(ci.buffer),
		})
	}

	for _, name := range n.outputOrder {
		anchor := n.outputAnchors[name]
		snap.Outputs = append(snap.Outputs, OutputSnapshot{
			Name:           anchor.name,
			Direction:      anchor.Direction(),
			Schema:         anchor.schema.Clone(),
			MetadataPushed: anchor.metadataPushed,
			Buffered:       len(anchor.pending),
			Flushed:        anchor.flushed,
			Closed:         anchor.closed,
		})
	}

	return snap
}
