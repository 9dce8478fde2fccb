package node

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliink/flownode/internal/model"
)

// recordingSink captures pushes and their relative order for assertions
type recordingSink struct {
	schemas map[string]model.Schema
	records map[string][]model.Record
	closed  map[string]bool
	ops     []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		schemas: make(map[string]model.Schema),
		records: make(map[string][]model.Record),
		closed:  make(map[string]bool),
	}
}

func (s *recordingSink) PushSchema(anchor string, schema model.Schema) {
	s.schemas[anchor] = schema
	s.ops = append(s.ops, "schema:"+anchor)
}

func (s *recordingSink) PushRecord(anchor string, record model.Record) {
	s.records[anchor] = append(s.records[anchor], record)
	s.ops = append(s.ops, "record:"+anchor)
}

func (s *recordingSink) CloseAnchor(anchor string) {
	s.closed[anchor] = true
	s.ops = append(s.ops, "close:"+anchor)
}

// runRecorder counts hook invocations and snapshots what the
// transformation saw on each call
type runRecorder struct {
	metadataCalls int
	processCalls  int
	processSeen   []map[string][]model.Record
	nodeClose     int
	ifaceClose    int
	generateCalls int
}

// hooks builds a pass-through hook set: metadata copies the schema of the
// first input (or a fixed one) to the output anchor, the transformation
// copies every accumulated input record to the output anchor.
func (r *runRecorder) hooks(output string) Hooks {
	return Hooks{
		BuildMetadata: func(in *InputManager, out *OutputManager, state *UserState, logger *slog.Logger) {
			r.metadataCalls++
			anchor, ok := out.Anchor(output)
			if !ok {
				return
			}
			schema := model.NewSchema(model.Field{Name: "value", Type: model.StringField})
			if names := in.AnchorNames(); len(names) > 0 {
				if input, ok := in.Anchor(names[0]); ok && !input.Schema().IsEmpty() {
					schema = input.Schema()
				}
			}
			anchor.SetSchema(schema)
		},
		ProcessData: func(in *InputManager, out *OutputManager, state *UserState, logger *slog.Logger) {
			r.processCalls++
			seen := make(map[string][]model.Record)
			for _, name := range in.AnchorNames() {
				input, _ := in.Anchor(name)
				seen[name] = input.Records()
			}
			r.processSeen = append(r.processSeen, seen)

			anchor, ok := out.Anchor(output)
			if !ok {
				return
			}
			for _, name := range in.AnchorNames() {
				input, _ := in.Anchor(name)
				anchor.Write(input.Records()...)
			}
		},
		PushAllRecords: func(n *PluginNode, limit int) {
			r.generateCalls++
		},
		Close: func(*PluginNode) {
			r.nodeClose++
		},
		InterfaceClose: func(*PluginNode) {
			r.ifaceClose++
		},
	}
}

func testSchema() model.Schema {
	return model.NewSchema(model.Field{Name: "value", Type: model.StringField})
}

func rec(v string) model.Record {
	return model.NewRecord(v)
}

func TestNew(t *testing.T) {
	t.Run("Rejects unknown mode at construction", func(t *testing.T) {
		_, err := New(Options{ToolName: "t", Mode: model.Mode("shuffle")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownMode)
	})

	t.Run("Accepts every recognized mode", func(t *testing.T) {
		for _, mode := range []model.Mode{model.BatchMode, model.StreamMode, model.SourceMode} {
			n, err := New(Options{ToolName: "t", Mode: mode})
			require.NoError(t, err)
			assert.Equal(t, mode, n.Mode())
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		n, err := New(Options{ToolName: "t", Mode: model.BatchMode})
		require.NoError(t, err)
		assert.Equal(t, model.ListRepresentation, n.Inputs().Representation())
		assert.NotEmpty(t, n.RunID())
		assert.Equal(t, model.StatusUninitialized, n.Status())
		assert.False(t, n.Initialized())
	})

	t.Run("Declared output anchors are registered in order", func(t *testing.T) {
		n, err := New(Options{
			ToolName:      "t",
			Mode:          model.BatchMode,
			OutputAnchors: []string{"Out", "Err"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Out", "Err"}, n.Outputs().AnchorNames())
	})
}

func TestSnapshot(t *testing.T) {
	n, err := New(Options{
		ToolName:      "snap",
		Mode:          model.StreamMode,
		OutputAnchors: []string{"Output"},
	})
	require.NoError(t, err)
	require.True(t, n.Init([]byte("tool: snap\n")))

	ci := n.AddIncomingConnection("stream", "Input")
	require.True(t, ci.Init(testSchema()))

	snap := n.Snapshot()
	assert.Equal(t, "snap", snap.ToolName)
	assert.Equal(t, model.StreamMode, snap.Mode)
	assert.Equal(t, model.StatusInitialized, snap.Status)
	require.Len(t, snap.Interfaces, 1)
	assert.Equal(t, "Input", snap.Interfaces[0].Anchor)
	assert.True(t, snap.Interfaces[0].Initialized)
	require.Len(t, snap.Outputs, 1)
	assert.Equal(t, "Output", snap.Outputs[0].Name)
}

func TestUserState(t *testing.T) {
	state := newUserState()

	state.Set("k", 7)
	v, ok := state.Get("k")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	state.Delete("k")
	_, ok = state.Get("k")
	assert.False(t, ok)
}

func TestAccessorsInHookContext(t *testing.T) {
	// Hooks run while the entry point holds the node lock; the derived
	// accessors must stay callable there without deadlocking.
	var (
		statusInClose    model.NodeStatus
		completedInClose bool
	)
	n, err := New(Options{
		ToolName:      "t",
		Mode:          model.BatchMode,
		OutputAnchors: []string{"Output"},
		Hooks: Hooks{
			Close: func(n *PluginNode) {
				statusInClose = n.Status()
				completedInClose = n.AllInputsCompleted()
			},
		},
	})
	require.NoError(t, err)
	require.True(t, n.Init(nil))

	ci := n.AddIncomingConnection("stream", "Input")
	require.True(t, ci.Init(testSchema()))
	ci.Close()
	n.Close(false)

	assert.Equal(t, model.StatusInitialized, statusInClose)
	assert.True(t, completedInClose)
}

func TestAllInputsCompletedInterleavings(t *testing.T) {
	// Completion is order independent: for every permutation of close
	// order across three interfaces, the derived predicate flips only
	// after the last close.
	orders := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, order := range orders {
		t.Run(fmt.Sprintf("order %v", order), func(t *testing.T) {
			rr := &runRecorder{}
			n, err := New(Options{
				ToolName:       "t",
				Mode:           model.StreamMode,
				RequiredInputs: []string{"A", "B", "C"},
				OutputAnchors:  []string{"Output"},
				Hooks:          rr.hooks("Output"),
				Sink:           newRecordingSink(),
			})
			require.NoError(t, err)
			require.True(t, n.Init(nil))

			interfaces := []*ConnectionInterface{
				n.AddIncomingConnection("stream", "A"),
				n.AddIncomingConnection("stream", "B"),
				n.AddIncomingConnection("stream", "C"),
			}
			for _, ci := range interfaces {
				require.True(t, ci.Init(testSchema()))
			}

			for i, idx := range order {
				assert.False(t, n.AllInputsCompleted())
				interfaces[idx].Close()
				if i == len(order)-1 {
					assert.True(t, n.AllInputsCompleted())
				}
			}
		})
	}
}
