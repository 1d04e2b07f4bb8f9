package docqa

import (
	"fmt"
	"time"

	"docqa/backend"
	"docqa/config"
	"docqa/history"
	"docqa/intent"
	"docqa/llm"
	"docqa/orchestrator"
	"docqa/retrieve"
	"docqa/synthesis"
	"docqa/trace"
)

// Service wires the question pipeline, the session store and the trace
// store behind the tool handlers.
type Service struct {
	Cfg       *config.Config
	Engine    *orchestrator.Engine
	Retriever *retrieve.TwoStage
	Sessions  SessionStore
	Traces    *trace.Store
}

// NewService builds the full pipeline from configuration.
func NewService(cfg *config.Config) (*Service, error) {
	be, err := backend.NewSearchBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("create search backend failed, err: %w", err)
	}
	provider, err := llm.NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider failed, err: %w", err)
	}

	retriever := &retrieve.TwoStage{
		Backend:       be,
		MetadataLimit: cfg.Limits.MetadataLimit,
		ChunkLimit:    cfg.Limits.ChunkLimit,
		FilterCap:     cfg.Limits.FilterCap,
	}
	traces := trace.NewStore(256, 30*time.Minute)
	engine := &orchestrator.Engine{
		Analyzer:   &intent.Analyzer{Provider: provider, MaxEntities: cfg.Limits.MaxEntities},
		Retriever:  retriever,
		Synth:      &synthesis.Synthesizer{Provider: provider, MaxContextTokens: cfg.Limits.MaxContextTokens},
		Summarizer: &history.Summarizer{Provider: provider},
		Traces:     traces,
		Cfg:        cfg,
	}

	sessions, err := newSessionStore(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("create session store failed, err: %w", err)
	}

	return &Service{
		Cfg:       cfg,
		Engine:    engine,
		Retriever: retriever,
		Sessions:  sessions,
		Traces:    traces,
	}, nil
}

func newSessionStore(cfg *config.SessionConfig) (SessionStore, error) {
	switch cfg.Store {
	case "redis":
		return NewRedisSessionStore(cfg)
	case "memory", "":
		return NewMemSessionStore(), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}

// chatContext renders the trailing history of a session for prompting.
// Returns the empty string when the session is unknown or empty.
func (s *Service) chatContext(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	sess, ok := s.Sessions.Get(sessionID)
	if !ok {
		return ""
	}
	msgs := sess.LastTurns(s.Cfg.Limits.HistoryTurns * 2)
	turns := make([]history.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, history.Turn{Role: m.Role, Content: m.Content})
	}
	return history.FormatTurns(turns)
}
