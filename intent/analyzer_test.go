package intent

import (
	"context"
	"errors"
	"testing"

	"docqa/schema"
)

// MockLLMProvider is a mock implementation of llm.Provider for testing
type MockLLMProvider struct {
	response string
	err      error
}

func (m *MockLLMProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *MockLLMProvider) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return m.GenerateCompletion(ctx, prompt)
}

func (m *MockLLMProvider) GetProviderType() string { return "mock" }

func TestAnalyzer_Analyze(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		err           error
		maxEntities   int
		wantType      schema.QueryType
		wantDocs      []string
		wantQueries   []string
		wantMode      schema.SynthesisMode
		wantReasoning string
	}{
		{
			name:        "comparison with aligned pairs",
			response:    `{"query_type":"comparison","documents":["Chase Agreement","Pizza Fusion Agreement"],"search_queries":["termination clause Chase","termination clause Pizza Fusion"],"analysis_type":"comparison","reasoning":"two documents"}`,
			wantType:    schema.QueryTypeComparison,
			wantDocs:    []string{"Chase Agreement", "Pizza Fusion Agreement"},
			wantQueries: []string{"termination clause Chase", "termination clause Pizza Fusion"},
			wantMode:    schema.SynthesisModeComparison,
		},
		{
			name:        "comparison with missing search queries is backfilled",
			response:    `{"query_type":"comparison","documents":["Doc A","Doc B"],"search_queries":["query for A"],"analysis_type":"comparison","reasoning":"x"}`,
			wantType:    schema.QueryTypeComparison,
			wantDocs:    []string{"Doc A", "Doc B"},
			wantQueries: []string{"query for A", "Doc B compare the docs"},
			wantMode:    schema.SynthesisModeComparison,
		},
		{
			name:        "comparison with zero documents degrades to general",
			response:    `{"query_type":"comparison","documents":[],"search_queries":[],"analysis_type":"comparison","reasoning":"x"}`,
			wantType:    schema.QueryTypeGeneral,
			wantDocs:    []string{},
			wantQueries: []string{"compare the docs"},
			wantMode:    schema.SynthesisModeStandard,
		},
		{
			name:          "malformed JSON falls back to single document",
			response:      "this is not json at all",
			wantType:      schema.QueryTypeSingleDocument,
			wantDocs:      []string{},
			wantQueries:   []string{"compare the docs"},
			wantMode:      schema.SynthesisModeStandard,
			wantReasoning: "fallback: unparseable analysis",
		},
		{
			name:          "gateway error falls back to single document",
			err:           errors.New("model unavailable"),
			wantType:      schema.QueryTypeSingleDocument,
			wantDocs:      []string{},
			wantQueries:   []string{"compare the docs"},
			wantMode:      schema.SynthesisModeStandard,
			wantReasoning: "fallback: unparseable analysis",
		},
		{
			name:        "fenced JSON is unwrapped",
			response:    "```json\n{\"query_type\":\"single_document\",\"documents\":[\"Doc A\"],\"search_queries\":[\"terms in Doc A\"],\"analysis_type\":\"standard\",\"reasoning\":\"x\"}\n```",
			wantType:    schema.QueryTypeSingleDocument,
			wantDocs:    []string{"Doc A"},
			wantQueries: []string{"terms in Doc A"},
			wantMode:    schema.SynthesisModeStandard,
		},
		{
			name:        "entity cap truncates documents and queries",
			response:    `{"query_type":"multi_document","documents":["A","B","C","D"],"search_queries":["qa","qb","qc","qd"],"analysis_type":"synthesis","reasoning":"x"}`,
			maxEntities: 2,
			wantType:    schema.QueryTypeMultiDocument,
			wantDocs:    []string{"A", "B"},
			wantQueries: []string{"qa", "qb"},
			wantMode:    schema.SynthesisModeSynthesis,
		},
		{
			name:        "unknown query type defaults to single document",
			response:    `{"query_type":"weird","documents":[],"search_queries":[],"analysis_type":"standard","reasoning":"x"}`,
			wantType:    schema.QueryTypeSingleDocument,
			wantDocs:    []string{},
			wantQueries: []string{"compare the docs"},
			wantMode:    schema.SynthesisModeStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Analyzer{
				Provider:    &MockLLMProvider{response: tt.response, err: tt.err},
				MaxEntities: tt.maxEntities,
			}

			got := a.Analyze(context.Background(), "compare the docs")
			if got == nil {
				t.Fatal("Analyze returned nil")
			}
			if got.QueryType != tt.wantType {
				t.Errorf("QueryType = %q, want %q", got.QueryType, tt.wantType)
			}
			if got.SynthesisMode != tt.wantMode {
				t.Errorf("SynthesisMode = %q, want %q", got.SynthesisMode, tt.wantMode)
			}
			if len(got.Documents) != len(tt.wantDocs) {
				t.Fatalf("Documents = %v, want %v", got.Documents, tt.wantDocs)
			}
			for i := range tt.wantDocs {
				if got.Documents[i] != tt.wantDocs[i] {
					t.Errorf("Documents[%d] = %q, want %q", i, got.Documents[i], tt.wantDocs[i])
				}
			}
			if len(got.SearchQueries) != len(tt.wantQueries) {
				t.Fatalf("SearchQueries = %v, want %v", got.SearchQueries, tt.wantQueries)
			}
			for i := range tt.wantQueries {
				if got.SearchQueries[i] != tt.wantQueries[i] {
					t.Errorf("SearchQueries[%d] = %q, want %q", i, got.SearchQueries[i], tt.wantQueries[i])
				}
			}
			if tt.wantReasoning != "" && got.Reasoning != tt.wantReasoning {
				t.Errorf("Reasoning = %q, want %q", got.Reasoning, tt.wantReasoning)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"no object", "nothing here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
