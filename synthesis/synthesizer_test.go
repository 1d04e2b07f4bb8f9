package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docqa/schema"
)

type mockProvider struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockProvider) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return m.GenerateCompletion(ctx, prompt)
}

func (m *mockProvider) GetProviderType() string { return "mock" }

func entry(label string, contents ...string) schema.ContextEntry {
	e := schema.ContextEntry{Label: label}
	for i, c := range contents {
		e.Chunks = append(e.Chunks, schema.ChunkHit{ID: string(rune('a' + i)), Content: c})
	}
	return e
}

func TestSynthesize_StandardPromptShape(t *testing.T) {
	mp := &mockProvider{response: "the answer"}
	s := &Synthesizer{Provider: mp, MaxContextTokens: 6000}

	got, dropped, err := s.Synthesize(context.Background(), "what are the terms?",
		schema.SynthesisModeStandard,
		[]schema.ContextEntry{entry("default", "clause one", "clause two")},
		"user: earlier question")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the answer" {
		t.Errorf("unexpected answer: %q", got)
	}
	if dropped != 0 {
		t.Errorf("unexpected dropped count: %d", dropped)
	}
	for _, want := range []string{"<context>", "clause one", "clause two", "<chat_history>", "user: earlier question", "what are the terms?"} {
		if !strings.Contains(mp.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSynthesize_ComparisonPromptHasLabeledSections(t *testing.T) {
	mp := &mockProvider{response: "compared"}
	s := &Synthesizer{Provider: mp, MaxContextTokens: 6000}

	_, _, err := s.Synthesize(context.Background(), "compare A and B",
		schema.SynthesisModeComparison,
		[]schema.ContextEntry{
			entry("Doc A", "alpha terms"),
			entry("Doc B", "beta terms"),
		}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aIdx := strings.Index(mp.lastPrompt, "=== Doc A ===")
	bIdx := strings.Index(mp.lastPrompt, "=== Doc B ===")
	if aIdx < 0 || bIdx < 0 {
		t.Fatalf("prompt missing labeled sections:\n%s", mp.lastPrompt)
	}
	if aIdx > bIdx {
		t.Error("sections out of order")
	}
	if !strings.Contains(mp.lastPrompt, "similarities") {
		t.Error("prompt missing comparison instructions")
	}
}

func TestSynthesize_EmptyContextUsesMarker(t *testing.T) {
	mp := &mockProvider{response: "general answer"}
	s := &Synthesizer{Provider: mp, MaxContextTokens: 6000}

	_, _, err := s.Synthesize(context.Background(), "anything",
		schema.SynthesisModeStandard, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mp.lastPrompt, NoContextMarker) {
		t.Error("prompt missing no-context marker")
	}
}

func TestSynthesize_PropagatesProviderError(t *testing.T) {
	mp := &mockProvider{err: errors.New("model down")}
	s := &Synthesizer{Provider: mp, MaxContextTokens: 6000}

	_, _, err := s.Synthesize(context.Background(), "q",
		schema.SynthesisModeStandard,
		[]schema.ContextEntry{entry("default", "x")}, "")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestBudgetEntries_DropsTailChunks(t *testing.T) {
	s := &Synthesizer{MaxContextTokens: 10}
	long := strings.Repeat("agreement clause text ", 50)
	entries := []schema.ContextEntry{
		entry("default", "short", long, long),
	}

	budgeted, dropped := s.budgetEntries(entries)

	if dropped != 2 {
		t.Errorf("expected 2 dropped chunks, got %d", dropped)
	}
	if len(budgeted[0].Chunks) != 1 || budgeted[0].Chunks[0].Content != "short" {
		t.Errorf("unexpected kept chunks: %v", budgeted[0].Chunks)
	}
}

func TestBudgetEntries_NoBudgetKeepsAll(t *testing.T) {
	s := &Synthesizer{}
	entries := []schema.ContextEntry{entry("default", "a", "b")}
	budgeted, dropped := s.budgetEntries(entries)
	if dropped != 0 || len(budgeted[0].Chunks) != 2 {
		t.Errorf("expected all chunks kept, got %v dropped=%d", budgeted, dropped)
	}
}
