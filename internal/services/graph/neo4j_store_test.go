package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeUpsertQuery_WhitelistedLabel(t *testing.T) {
	query, err := nodeUpsertQuery("Concept")
	require.NoError(t, err)
	assert.Equal(t, "MERGE (n:Concept {name: $name})", query)
}

func TestNodeUpsertQuery_RejectsUnknownLabel(t *testing.T) {
	tests := []string{"Person", "Concept {name:'x'}) DETACH DELETE (m", "", "concept"}

	for _, label := range tests {
		_, err := nodeUpsertQuery(label)
		assert.Error(t, err, "label %q must be rejected", label)
	}
}

func TestEdgeUpsertQuery_WhitelistedRelation(t *testing.T) {
	query, err := edgeUpsertQuery("RELATED_TO")
	require.NoError(t, err)
	assert.Contains(t, query, "MERGE (a)-[r:RELATED_TO]->(b)")
	assert.Contains(t, query, "$from_name")
	assert.Contains(t, query, "$to_name")
}

func TestEdgeUpsertQuery_RejectsUnknownRelation(t *testing.T) {
	tests := []string{"DEPENDS_ON", "RELATED_TO]->(b) DELETE b//", "", "related_to"}

	for _, rel := range tests {
		_, err := edgeUpsertQuery(rel)
		assert.Error(t, err, "relation %q must be rejected", rel)
	}
}
