package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliink/flownode/internal/model"
)

func TestOutputAnchor(t *testing.T) {
	t.Run("Direction is always OUT", func(t *testing.T) {
		a := &OutputAnchor{name: "Output", sink: discardSink{}}
		assert.Equal(t, model.OutDirection, a.Direction())
	})

	t.Run("WriteTable sets schema and appends behind pending records", func(t *testing.T) {
		sink := newRecordingSink()
		a := &OutputAnchor{name: "Output", sink: sink}

		a.Write(rec("x"))
		a.WriteTable(model.NewTable(testSchema(), []model.Record{rec("y"), rec("z")}))

		assert.Equal(t, []string{"value"}, a.Schema().FieldNames())

		a.pushMetadata()
		a.flush()
		assert.Equal(t, []model.Record{rec("x"), rec("y"), rec("z")}, sink.records["Output"])
	})

	t.Run("Flush before metadata keeps records pending", func(t *testing.T) {
		sink := newRecordingSink()
		a := &OutputAnchor{name: "Output", sink: sink}

		a.Write(rec("x"))
		a.flush()
		assert.Empty(t, sink.records["Output"])

		a.SetSchema(testSchema())
		a.pushMetadata()
		a.flush()
		assert.Equal(t, []model.Record{rec("x")}, sink.records["Output"])
		assert.Equal(t, []string{"schema:Output", "record:Output"}, sink.ops)
	})

	t.Run("Metadata without a schema is not pushed", func(t *testing.T) {
		sink := newRecordingSink()
		a := &OutputAnchor{name: "Output", sink: sink}

		a.pushMetadata()
		assert.Empty(t, sink.ops)
	})
}

func TestSnapshotOutputDirection(t *testing.T) {
	n, err := New(Options{
		ToolName:      "t",
		Mode:          model.BatchMode,
		OutputAnchors: []string{"Output"},
	})
	require.NoError(t, err)

	snap := n.Snapshot()
	require.Len(t, snap.Outputs, 1)
	assert.Equal(t, model.OutDirection, snap.Outputs[0].Direction)
}
