package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryTypeValid(t *testing.T) {
	for _, qt := range []QueryType{QueryTypeSingleDocument, QueryTypeComparison, QueryTypeMultiDocument, QueryTypeGeneral} {
		assert.True(t, qt.Valid(), "query type %s", qt)
	}
	assert.False(t, QueryType("").Valid())
	assert.False(t, QueryType("hybrid").Valid())
}

func TestSynthesisModeValid(t *testing.T) {
	for _, m := range []SynthesisMode{SynthesisModeStandard, SynthesisModeComparison, SynthesisModeSynthesis} {
		assert.True(t, m.Valid(), "mode %s", m)
	}
	assert.False(t, SynthesisMode("summary").Valid())
}

func TestIntentAnalysisJSON(t *testing.T) {
	raw := `{
		"query_type": "comparison",
		"documents": ["a.pdf", "b.pdf"],
		"search_queries": ["a.pdf terms", "b.pdf terms"],
		"analysis_type": "comparison",
		"reasoning": "two documents"
	}`
	var an IntentAnalysis
	require.NoError(t, json.Unmarshal([]byte(raw), &an))
	assert.Equal(t, QueryTypeComparison, an.QueryType)
	assert.Equal(t, SynthesisModeComparison, an.SynthesisMode)
	assert.Len(t, an.Documents, 2)
	assert.Equal(t, an.Documents[0]+" terms", an.SearchQueries[0])
}
