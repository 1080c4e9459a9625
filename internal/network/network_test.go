package network

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabTopology(t *testing.T) {
	topo := LabTopology()
	require.Len(t, topo.Elements.Nodes, 5)
	require.Len(t, topo.Elements.Edges, 4)
	assert.Equal(t, "R18 (RR)", topo.Elements.Nodes[3].Data.Label)
	assert.Equal(t, EdgeData{ID: "e4", Source: "R15", Target: "R19"}, topo.Elements.Edges[3].Data)

	raw, err := json.Marshal(topo)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"elements":{"nodes":[{"data":{"id":"R15","label":"R15 (PE)"}}`)

	topo.Elements.Nodes[0].Data.ID = "changed"
	assert.Equal(t, "R15", LabTopology().Elements.Nodes[0].Data.ID)
}

func TestAuditCatalogue(t *testing.T) {
	c, ok := AuditCategory(DefaultAuditType)
	assert.True(t, ok)
	assert.Equal(t, "connectivity", c)

	_, ok = AuditCategory("nmap")
	assert.False(t, ok)

	types := AuditTypes()
	assert.Contains(t, types, "bgp")
	assert.IsIncreasing(t, types)
}
