package schema

import "time"

// QueryType classifies a user question for routing.
type QueryType string

const (
	QueryTypeSingleDocument QueryType = "single_document"
	QueryTypeComparison     QueryType = "comparison"
	QueryTypeMultiDocument  QueryType = "multi_document"
	QueryTypeGeneral        QueryType = "general"
)

// Valid reports whether t is one of the four known query types.
func (t QueryType) Valid() bool {
	switch t {
	case QueryTypeSingleDocument, QueryTypeComparison, QueryTypeMultiDocument, QueryTypeGeneral:
		return true
	}
	return false
}

// SynthesisMode selects how retrieved context is turned into an answer.
type SynthesisMode string

const (
	SynthesisModeStandard   SynthesisMode = "standard"
	SynthesisModeComparison SynthesisMode = "comparison"
	SynthesisModeSynthesis  SynthesisMode = "synthesis"
)

func (m SynthesisMode) Valid() bool {
	switch m {
	case SynthesisModeStandard, SynthesisModeComparison, SynthesisModeSynthesis:
		return true
	}
	return false
}

// IntentAnalysis is the routing decision produced for one turn.
// For comparison and multi_document queries Documents and SearchQueries
// are pairwise aligned and have equal length.
type IntentAnalysis struct {
	QueryType     QueryType     `json:"query_type"`
	Documents     []string      `json:"documents"`
	SearchQueries []string      `json:"search_queries"`
	SynthesisMode SynthesisMode `json:"analysis_type"`
	Reasoning     string        `json:"reasoning"`
}

// ChunkHit is a single retrieved content chunk.
type ChunkHit struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Score      float64        `json:"score"`
	Content    string         `json:"content"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RetrievalResult is the outcome of one two-stage retrieval pass.
type RetrievalResult struct {
	SourceQuery       string     `json:"source_query"`
	DocumentIDs       []string   `json:"document_ids"`
	Chunks            []ChunkHit `json:"chunks"`
	Degraded          bool       `json:"degraded"`
	DegradationReason string     `json:"degradation_reason,omitempty"`
}

// ContextEntry is one labeled block of retrieved context handed to synthesis.
// Label is the document name for comparison/multi-document flows and
// "default" otherwise.
type ContextEntry struct {
	Label  string     `json:"label"`
	Chunks []ChunkHit `json:"chunks"`
}

// Answer is the final product of one turn.
type Answer struct {
	Text    string         `json:"text"`
	Entries []ContextEntry `json:"entries,omitempty"`
	Mode    SynthesisMode  `json:"mode"`
	RunID   string         `json:"run_id"`
	Failed  bool           `json:"failed,omitempty"`
}

// RunTrace records what happened during one turn for debugging.
type RunTrace struct {
	RunID          string            `json:"run_id"`
	Question       string            `json:"question"`
	EffectiveQuery string            `json:"effective_query"`
	Analysis       *IntentAnalysis   `json:"analysis,omitempty"`
	Results        []RetrievalResult `json:"results,omitempty"`
	Mode           SynthesisMode     `json:"mode"`
	Tiers          []string          `json:"tiers,omitempty"`
	DroppedChunks  int               `json:"dropped_chunks,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	Elapsed        time.Duration     `json:"elapsed"`
	Err            string            `json:"error,omitempty"`
}
