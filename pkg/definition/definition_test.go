package definition

import (
	"log/slog"
	"testing"

	"github.com/guidely/automator/pkg/graph"
	"github.com/guidely/automator/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := testutil.CreateValidDefinition()

	raw, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestDecode_RejectsNonDocument(t *testing.T) {
	_, err := Decode([]byte(`"just a string"`))
	require.Error(t, err)
	assert.True(t, graph.IsMalformedDefinition(err))
}

func TestDecode_RejectsMissingViewport(t *testing.T) {
	_, err := Decode([]byte(`{"nodes": [], "edges": []}`))
	require.Error(t, err)
	assert.True(t, graph.IsMalformedDefinition(err))
}

func TestDecode_RejectsUnknownNodeType(t *testing.T) {
	raw := `{
		"nodes": [{"id": "n1", "type": "loop", "position": {"x": 0, "y": 0}, "data": {}}],
		"edges": [],
		"viewport": {"x": 0, "y": 0, "zoom": 1}
	}`

	_, err := Decode([]byte(raw))
	require.Error(t, err)
	assert.True(t, graph.IsMalformedDefinition(err))
}

func TestDecode_RejectsDanglingEdge(t *testing.T) {
	raw := `{
		"nodes": [{"id": "n1", "type": "start", "position": {"x": 0, "y": 0}, "data": {"label": "Start"}}],
		"edges": [{"id": "e1", "source": "n1", "target": "ghost"}],
		"viewport": {"x": 0, "y": 0, "zoom": 1}
	}`

	_, err := Decode([]byte(raw))
	require.Error(t, err)
	assert.True(t, graph.IsMalformedDefinition(err))
}

func TestDecodeLenient_PassesThroughValidDocument(t *testing.T) {
	raw, err := Encode(testutil.CreateValidDefinition())
	require.NoError(t, err)

	def, recovered := DecodeLenient(raw, slog.Default(), "automator-1")

	assert.False(t, recovered)
	assert.Len(t, def.Nodes, 5)
}

func TestDecodeLenient_RecoversFromGarbage(t *testing.T) {
	def, recovered := DecodeLenient([]byte(`{"nodes": "oops"}`), slog.Default(), "automator-1")

	assert.True(t, recovered)
	assert.Empty(t, def.Nodes)
	assert.Empty(t, def.Edges)
	assert.InDelta(t, 1.0, def.Viewport.Zoom, 0.001)
}

func TestDecodeLenient_RecoversFromEmptyAndNull(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("null")} {
		def, recovered := DecodeLenient(raw, slog.Default(), "automator-1")

		assert.True(t, recovered)
		assert.Empty(t, def.Nodes)
	}
}
