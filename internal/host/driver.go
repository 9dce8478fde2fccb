package host

import (
	"fmt"
	"sync"
	"time"

	"github.com/sliink/flownode/internal/model"
	"github.com/sliink/flownode/internal/node"
)

// maxRecentEvents bounds the per-driver event history kept for inspection
const maxRecentEvents = 256

// Driver plays the engine's role for a single node: it fires entry points
// in script order, records lifecycle events, and captures downstream
// output. It does not schedule nodes relative to each other.
type Driver struct {
	name string
	node *node.PluginNode
	bus  *EventBus
	sink *CaptureSink

	mutex        sync.Mutex
	interfaces   map[string]*node.ConnectionInterface
	recent       []Event
	lastRun      time.Time
	lastError    string
	metadataSeen bool
}

// NewDriver creates a driver for one node. The sink must be the one the
// node was constructed with so captures line up with pushes.
func NewDriver(name string, n *node.PluginNode, sink *CaptureSink, bus *EventBus) *Driver {
	if bus == nil {
		bus = NewEventBus()
	}
	if sink == nil {
		sink = NewCaptureSink()
	}
	return &Driver{
		name:       name,
		node:       n,
		bus:        bus,
		sink:       sink,
		interfaces: make(map[string]*node.ConnectionInterface),
	}
}

// Name returns the driver's registered name
func (d *Driver) Name() string { return d.name }

// Node returns the node under drive
func (d *Driver) Node() *node.PluginNode { return d.node }

// Sink returns the capture sink receiving the node's output
func (d *Driver) Sink() *CaptureSink { return d.sink }

// Bus returns the driver's event bus
func (d *Driver) Bus() *EventBus { return d.bus }

// Interface returns a connection handle created by an AddIncoming step
func (d *Driver) Interface(connection string) (*node.ConnectionInterface, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	ci, exists := d.interfaces[connection]
	return ci, exists
}

// RecentEvents returns the driver's bounded event history, oldest first
func (d *Driver) RecentEvents() []Event {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	out := make([]Event, len(d.recent))
	copy(out, d.recent)
	return out
}

// Run executes a script against the node, step by step. Interface-level
// failures are recorded and the remaining steps still run, since the
// contract keeps bookkeeping alive after a failed negotiation; a topology
// misuse panic from the node is recovered into the returned error.
func (d *Driver) Run(script *Script) (err error) {
	d.mutex.Lock()
	d.lastRun = time.Now()
	d.lastError = ""
	d.metadataSeen = false
	d.mutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run aborted: %v", r)
			d.recordError(err)
			d.publish(model.EventError, r)
		} else if err != nil {
			d.recordError(err)
		}
	}()

	var firstErr error
	for i, step := range script.Steps {
		if stepErr := d.runStep(step); stepErr != nil && firstErr == nil {
			firstErr = fmt.Errorf("step %d (%s): %w", i, step.Kind, stepErr)
		}
		d.observeNegotiation()
	}
	return firstErr
}

// observeNegotiation publishes the metadata event the first time the node
// reports a negotiated schema, whichever step triggered it.
func (d *Driver) observeNegotiation() {
	d.mutex.Lock()
	seen := d.metadataSeen
	d.mutex.Unlock()
	if seen {
		return
	}

	snap := d.node.Snapshot()
	if !snap.Negotiated {
		return
	}

	d.mutex.Lock()
	d.metadataSeen = true
	d.mutex.Unlock()

	outputs := make(map[string]any, len(snap.Outputs))
	for _, out := range snap.Outputs {
		outputs[out.Name] = out.Schema.FieldNames()
	}
	d.publish(model.EventMetadataNegotiated, outputs)
}

func (d *Driver) runStep(step Step) error {
	switch step.Kind {
	case StepInit:
		ok := d.node.Init(step.Config)
		d.publish(model.EventNodeInit, map[string]any{"success": ok})
		if !ok {
			return fmt.Errorf("node init failed")
		}

	case StepAddIncoming:
		ci := d.node.AddIncomingConnection(step.ConnType, step.Anchor)
		d.mutex.Lock()
		d.interfaces[step.Connection] = ci
		d.mutex.Unlock()
		d.publish(model.EventConnectionAdded, map[string]any{
			"anchor": step.Anchor,
			"type":   step.ConnType,
		})

	case StepAddOutgoing:
		if !d.node.AddOutgoingConnection(step.Anchor) {
			d.publish(model.EventError, fmt.Sprintf("outgoing connection %q rejected", step.Anchor))
			return fmt.Errorf("outgoing connection %q rejected", step.Anchor)
		}

	case StepInterfaceInit:
		ci, err := d.lookup(step.Connection)
		if err != nil {
			return err
		}
		if !ci.Init(step.Schema) {
			d.publish(model.EventError, fmt.Sprintf("metadata negotiation failed on %q", step.Connection))
			return fmt.Errorf("metadata negotiation failed on %q", step.Connection)
		}

	case StepPushRecord:
		ci, err := d.lookup(step.Connection)
		if err != nil {
			return err
		}
		accepted := ci.PushRecord(step.Record)
		d.publish(model.EventRecordPushed, map[string]any{
			"connection": step.Connection,
			"accepted":   accepted,
		})

	case StepProgress:
		ci, err := d.lookup(step.Connection)
		if err != nil {
			return err
		}
		ci.UpdateProgress(step.Fraction)

	case StepInterfaceClose:
		ci, err := d.lookup(step.Connection)
		if err != nil {
			return err
		}
		ci.Close()
		d.publish(model.EventInterfaceClosed, map[string]any{"connection": step.Connection})

	case StepPushAll:
		d.node.PushAllRecords(step.Limit)
		d.publish(model.EventOutputFlushed, map[string]any{"limit": step.Limit})

	case StepClose:
		d.node.Close(step.HasErrors)
		d.publish(model.EventNodeClosed, map[string]any{"has_errors": step.HasErrors})

	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}

	return nil
}

func (d *Driver) lookup(connection string) (*node.ConnectionInterface, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	ci, exists := d.interfaces[connection]
	if !exists {
		return nil, fmt.Errorf("unknown connection %q", connection)
	}
	return ci, nil
}

func (d *Driver) publish(eventType model.EventType, data any) {
	event := NewEvent(eventType, d.name, d.node.RunID(), data)

	d.mutex.Lock()
	d.recent = append(d.recent, event)
	if len(d.recent) > maxRecentEvents {
		d.recent = d.recent[len(d.recent)-maxRecentEvents:]
	}
	d.mutex.Unlock()

	d.bus.Publish(event)
}

func (d *Driver) recordError(err error) {
	d.mutex.Lock()
	d.lastError = err.Error()
	d.mutex.Unlock()
}
