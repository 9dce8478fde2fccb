package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliink/flownode/internal/model"
)

func TestConnectionInit(t *testing.T) {
	t.Run("Captures the negotiated schema", func(t *testing.T) {
		n, err := New(Options{ToolName: "t", Mode: model.BatchMode})
		require.NoError(t, err)
		require.True(t, n.Init(nil))

		ci := n.AddIncomingConnection("stream", "Input")
		schema := testSchema()
		require.True(t, ci.Init(schema))

		assert.True(t, ci.Initialized())
		assert.Equal(t, schema.FieldNames(), ci.Schema().FieldNames())

		// The connection holds its own copy.
		schema.Fields[0].Name = "mutated"
		assert.Equal(t, "value", ci.Schema().Fields[0].Name)
	})

	t.Run("Hook receives the connection and schema", func(t *testing.T) {
		var seenAnchor string
		var seenFields []string
		n, err := New(Options{
			ToolName: "t",
			Mode:     model.BatchMode,
			Hooks: Hooks{
				InterfaceInit: func(ci *ConnectionInterface, schema model.Schema) bool {
					seenAnchor = ci.AnchorName()
					seenFields = schema.FieldNames()
					return true
				},
			},
		})
		require.NoError(t, err)
		require.True(t, n.Init(nil))

		ci := n.AddIncomingConnection("stream", "Input")
		require.True(t, ci.Init(testSchema()))
		assert.Equal(t, "Input", seenAnchor)
		assert.Equal(t, []string{"value"}, seenFields)
	})
}

func TestConnectionPushRecord(t *testing.T) {
	t.Run("Refused before node initialization", func(t *testing.T) {
		rr := &runRecorder{}
		n, err := New(Options{
			ToolName:      "t",
			Mode:          model.StreamMode,
			OutputAnchors: []string{"Output"},
			Hooks:         rr.hooks("Output"),
			Sink:          newRecordingSink(),
		})
		require.NoError(t, err)

		ci := n.AddIncomingConnection("stream", "Input")
		assert.False(t, ci.PushRecord(rec("early")))
		assert.Zero(t, rr.processCalls)
	})

	t.Run("Records returns a copy of the buffer", func(t *testing.T) {
		n, err := New(Options{
			ToolName:       "t",
			Mode:           model.BatchMode,
			RequiredInputs: []string{"Input"},
		})
		require.NoError(t, err)
		require.True(t, n.Init(nil))

		ci := n.AddIncomingConnection("stream", "Input")
		require.True(t, ci.Init(testSchema()))
		require.True(t, ci.PushRecord(rec("a")))

		records := ci.Records()
		require.Len(t, records, 1)
		records[0] = rec("mutated")
		assert.Equal(t, []model.Record{rec("a")}, ci.Records())
	})
}

func TestConnectionUpdateProgress(t *testing.T) {
	var seen []float64
	n, err := New(Options{
		ToolName: "t",
		Mode:     model.BatchMode,
		Hooks: Hooks{
			UpdateProgress: func(ci *ConnectionInterface, fraction float64) {
				seen = append(seen, fraction)
			},
		},
	})
	require.NoError(t, err)
	require.True(t, n.Init(nil))

	ci := n.AddIncomingConnection("stream", "Input")
	require.True(t, ci.Init(testSchema()))

	ci.UpdateProgress(0.25)
	ci.UpdateProgress(0.75)

	assert.Equal(t, []float64{0.25, 0.75}, seen)
	assert.Equal(t, 0.75, n.Progress())
}

func TestAnchorViews(t *testing.T) {
	n, err := New(Options{
		ToolName:            "t",
		Mode:                model.BatchMode,
		RequiredInputs:      []string{"Input"},
		InputRepresentation: model.TableRepresentation,
	})
	require.NoError(t, err)
	require.True(t, n.Init(nil))

	first := n.AddIncomingConnection("stream", "Input")
	second := n.AddIncomingConnection("stream", "Input")
	require.True(t, first.Init(testSchema()))
	require.True(t, second.Init(testSchema()))

	require.True(t, first.PushRecord(rec("a")))
	require.True(t, second.PushRecord(rec("b")))
	require.True(t, first.PushRecord(rec("c")))

	anchor, ok := n.Inputs().Anchor("Input")
	require.True(t, ok)

	t.Run("Records aggregate in connection registration order", func(t *testing.T) {
		assert.Equal(t, []model.Record{rec("a"), rec("c"), rec("b")}, anchor.Records())
	})

	t.Run("Schema comes from the first initialized connection", func(t *testing.T) {
		assert.Equal(t, []string{"value"}, anchor.Schema().FieldNames())
	})

	t.Run("Table view carries schema and all rows", func(t *testing.T) {
		assert.Equal(t, model.TableRepresentation, n.Inputs().Representation())
		table := anchor.Table()
		assert.Equal(t, 3, table.NumRows())
		values, ok := table.Column("value")
		require.True(t, ok)
		assert.Equal(t, []any{"a", "c", "b"}, values)
	})
}
