package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
tool: uppercase
mode: stream
uppercase: true
limits:
  max_records: 100
  timeout: 30
anchors:
  - Input
  - Lookup
input_schema:
  fields:
    - name: line
      type: STRING
`

func TestParse(t *testing.T) {
	t.Run("Parses a valid payload", func(t *testing.T) {
		tree, err := Parse([]byte(sampleConfig))
		require.NoError(t, err)
		assert.NotNil(t, tree)
	})

	t.Run("Empty payload yields an empty tree", func(t *testing.T) {
		tree, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, tree.Keys())
	})

	t.Run("Rejects malformed payload", func(t *testing.T) {
		_, err := Parse([]byte("a: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("Rejects non-mapping root", func(t *testing.T) {
		_, err := Parse([]byte("- just\n- a\n- list\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "mapping")
	})
}

func TestTreeKeys(t *testing.T) {
	tree, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	t.Run("Keys preserve document order", func(t *testing.T) {
		assert.Equal(t, []string{"tool", "mode", "uppercase", "limits", "anchors", "input_schema"}, tree.Keys())
	})
}

func TestTreeGet(t *testing.T) {
	tree, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	t.Run("GetString returns values and defaults", func(t *testing.T) {
		assert.Equal(t, "uppercase", tree.GetString("tool", ""))
		assert.Equal(t, "fallback", tree.GetString("missing", "fallback"))
	})

	t.Run("GetInt navigates dotted paths", func(t *testing.T) {
		assert.Equal(t, 100, tree.GetInt("limits.max_records", 0))
		assert.Equal(t, 42, tree.GetInt("limits.missing", 42))
	})

	t.Run("GetBool returns values and defaults", func(t *testing.T) {
		assert.True(t, tree.GetBool("uppercase", false))
		assert.False(t, tree.GetBool("missing", false))
	})

	t.Run("Get returns default for wrong path through scalar", func(t *testing.T) {
		assert.Equal(t, "dflt", tree.Get("tool.nested", "dflt"))
	})

	t.Run("GetStringSlice returns sequences", func(t *testing.T) {
		assert.Equal(t, []string{"Input", "Lookup"}, tree.GetStringSlice("anchors"))
		assert.Nil(t, tree.GetStringSlice("tool"))
	})

	t.Run("Has reports path existence", func(t *testing.T) {
		assert.True(t, tree.Has("limits.timeout"))
		assert.False(t, tree.Has("limits.absent"))
	})
}

func TestTreeChild(t *testing.T) {
	tree, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	t.Run("Child returns subtrees", func(t *testing.T) {
		limits, ok := tree.Child("limits")
		require.True(t, ok)
		assert.Equal(t, []string{"max_records", "timeout"}, limits.Keys())
	})

	t.Run("Child fails on scalars and missing paths", func(t *testing.T) {
		_, ok := tree.Child("tool")
		assert.False(t, ok)
		_, ok = tree.Child("missing")
		assert.False(t, ok)
	})
}

func TestTreeDecode(t *testing.T) {
	tree, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	t.Run("Decodes subtrees into structs", func(t *testing.T) {
		schemaTree, ok := tree.Child("input_schema")
		require.True(t, ok)

		var schema struct {
			Fields []struct {
				Name string `yaml:"name"`
				Type string `yaml:"type"`
			} `yaml:"fields"`
		}
		require.NoError(t, schemaTree.Decode(&schema))
		require.Len(t, schema.Fields, 1)
		assert.Equal(t, "line", schema.Fields[0].Name)
		assert.Equal(t, "STRING", schema.Fields[0].Type)
	})
}
