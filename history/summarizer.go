package history

import (
	"context"
	"fmt"
	"strings"

	"docqa/common/logger"
	"docqa/llm"
)

// Summarizer folds recent chat history into the current question so that
// follow-ups like "and what about the other one?" become self-contained
// search queries.
type Summarizer struct {
	Provider llm.Provider
}

const summaryPrompt = `[INST]
Based on the chat history below and the question, generate a query that extends the question
with the chat history provided. The query should be in natural language.
Answer with only the query. Do not add any explanation.

<chat_history>
%s
</chat_history>
<question>
%s
</question>
[/INST]`

// EffectiveQuery returns the history-aware query for this turn. With no
// history, or when the model call fails, the raw question is returned.
func (s *Summarizer) EffectiveQuery(ctx context.Context, chatContext, question string) string {
	if strings.TrimSpace(chatContext) == "" {
		return question
	}
	summary, err := s.Provider.GenerateCompletion(ctx, fmt.Sprintf(summaryPrompt, chatContext, question))
	if err != nil {
		logger.Warnf("history: summary failed, using raw question: %v", err)
		return question
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return question
	}
	return summary
}

// FormatTurns renders chat turns the way the summarizer and the standard
// synthesis prompt expect them.
func FormatTurns(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Turn is one prior chat message.
type Turn struct {
	Role    string
	Content string
}
