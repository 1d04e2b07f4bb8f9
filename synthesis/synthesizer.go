package synthesis

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"docqa/common/logger"
	"docqa/llm"
	"docqa/metrics"
	"docqa/schema"
)

// NoContextMarker is placed in the prompt when retrieval produced nothing,
// so the model answers from general knowledge and says what is missing.
const NoContextMarker = "No relevant document excerpts were retrieved for this question."

// Synthesizer turns retrieved context into the final answer text.
type Synthesizer struct {
	Provider         llm.Provider
	MaxContextTokens int

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

const standardPrompt = `[INST]
You are a helpful AI chat assistant with document retrieval capabilities. When a user asks you a question,
you will also be given context provided between <context> and </context> tags. Use that context
with the user's chat history provided between <chat_history> and </chat_history> tags
to provide a summary that addresses the user's question. Ensure the answer is coherent, concise,
and directly relevant to the user's question.

If the user asks a generic question which cannot be answered with the given context or chat_history,
just say "I don't know the answer to that question."

Don't say things like "according to the provided context".

<chat_history>
%s
</chat_history>
<context>
%s
</context>
<question>
%s
</question>
[/INST]
Answer:
`

const multiDocPrompt = `You are analyzing multiple documents to answer a comparison or multi-document question.

Original Question: %s

Document Information:
%s

Instructions:
1. If this is a comparison question, provide a structured comparison highlighting:
   - Key similarities between the documents
   - Important differences
   - Specific terms, conditions, or clauses that differ
   - Business or practical implications

2. If this is a multi-document question, synthesize information from all sources:
   - Combine relevant information from all documents
   - Note where information comes from which document
   - Provide a comprehensive answer

3. Be specific and cite which document contains which information
4. If documents are missing or information is incomplete, note this clearly
5. Focus on directly answering the user's question

Provide a clear, well-structured response that directly addresses the user's question.`

// Synthesize builds the mode-specific prompt and asks the model once.
// It returns the answer text and the number of chunks dropped to fit the
// context token budget.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, mode schema.SynthesisMode, entries []schema.ContextEntry, chatContext string) (string, int, error) {
	metrics.IncSynthesisMode(string(mode))
	budgeted, dropped := s.budgetEntries(entries)
	if dropped > 0 {
		logger.Infof("synthesis: dropped %d chunks to fit token budget", dropped)
	}

	var prompt string
	switch mode {
	case schema.SynthesisModeComparison, schema.SynthesisModeSynthesis:
		prompt = fmt.Sprintf(multiDocPrompt, question, labeledContext(budgeted))
	default:
		prompt = fmt.Sprintf(standardPrompt, chatContext, flatContext(budgeted), question)
	}

	text, err := s.Provider.GenerateCompletion(ctx, prompt)
	if err != nil {
		return "", dropped, err
	}
	return text, dropped, nil
}

// labeledContext renders per-document sections for multi-document prompts.
func labeledContext(entries []schema.ContextEntry) string {
	var b strings.Builder
	empty := true
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("\n=== %s ===\n", e.Label))
		if len(e.Chunks) == 0 {
			b.WriteString("(no content retrieved)\n")
			continue
		}
		empty = false
		for i, c := range e.Chunks {
			b.WriteString(fmt.Sprintf("Context document %d: %s \n\n", i+1, c.Content))
		}
	}
	if empty {
		return NoContextMarker
	}
	return b.String()
}

// flatContext renders a single context block for the standard prompt.
func flatContext(entries []schema.ContextEntry) string {
	var b strings.Builder
	n := 0
	for _, e := range entries {
		for _, c := range e.Chunks {
			n++
			b.WriteString(fmt.Sprintf("Context document %d: %s \n\n", n, c.Content))
		}
	}
	if n == 0 {
		return NoContextMarker
	}
	return b.String()
}

// budgetEntries drops chunks from the tail until the concatenated context
// fits MaxContextTokens.
func (s *Synthesizer) budgetEntries(entries []schema.ContextEntry) ([]schema.ContextEntry, int) {
	if s.MaxContextTokens <= 0 {
		return entries, 0
	}
	budget := s.MaxContextTokens
	out := make([]schema.ContextEntry, len(entries))
	dropped := 0
	exhausted := false
	for i, e := range entries {
		kept := schema.ContextEntry{Label: e.Label}
		for _, c := range e.Chunks {
			if exhausted {
				dropped++
				continue
			}
			cost := s.countTokens(c.Content)
			if cost > budget {
				exhausted = true
				dropped++
				continue
			}
			budget -= cost
			kept.Chunks = append(kept.Chunks, c)
		}
		out[i] = kept
	}
	return out, dropped
}

func (s *Synthesizer) countTokens(text string) int {
	s.encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("synthesis: tokenizer init failed, using byte estimate: %v", err)
			return
		}
		s.enc = enc
	})
	if s.enc == nil {
		return len(text) / 4
	}
	return len(s.enc.Encode(text, nil, nil))
}
