package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/common/logger"
	"docqa/config"
	"docqa/history"
	"docqa/intent"
	"docqa/metrics"
	"docqa/retrieve"
	"docqa/schema"
	"docqa/synthesis"
	"docqa/trace"
)

// Tier labels recorded in the run trace when a degradation path fires.
const (
	tierNoContext      = "no_context"
	tierSingleDocRetry = "single_doc_fallback"
	tierTotalFailure   = "total_failure"
)

// Engine drives a full question turn: intent analysis, routed retrieval
// and answer synthesis, with degradation paths at every stage.
type Engine struct {
	Analyzer   *intent.Analyzer
	Retriever  *retrieve.TwoStage
	Synth      *synthesis.Synthesizer
	Summarizer *history.Summarizer
	Traces     *trace.Store
	Cfg        *config.Config
}

// entityResult pairs a retrieval result with the slot it belongs to so
// parallel lookups can be reassembled in document order.
type entityResult struct {
	slot   int
	result schema.RetrievalResult
}

// HandleTurn answers a single question. It never returns a nil Answer:
// when every recovery path is exhausted the Answer carries Failed=true
// and an explanatory text instead.
func (e *Engine) HandleTurn(ctx context.Context, question string, chatContext string) (*schema.Answer, error) {
	start := time.Now()
	runID := uuid.New().String()
	tr := &schema.RunTrace{
		RunID:     runID,
		Question:  question,
		StartedAt: start,
	}
	defer func() {
		tr.Elapsed = time.Since(start)
		if e.Traces != nil {
			e.Traces.Put(tr)
		}
	}()

	effective := question
	if e.Summarizer != nil {
		effective = e.Summarizer.EffectiveQuery(ctx, chatContext, question)
	}
	tr.EffectiveQuery = effective

	analysis := e.Analyzer.Analyze(ctx, effective)
	tr.Analysis = analysis
	logger.Infof("turn %s: type=%s mode=%s docs=%d queries=%d", runID, analysis.QueryType, analysis.SynthesisMode, len(analysis.Documents), len(analysis.SearchQueries))

	var results []schema.RetrievalResult
	switch analysis.QueryType {
	case schema.QueryTypeComparison:
		results = e.retrieveParallel(ctx, analysis)
	case schema.QueryTypeMultiDocument:
		results = e.retrieveSequential(ctx, analysis)
	default:
		results = e.retrieveSingle(ctx, analysis, effective)
	}
	tr.Results = results
	for _, r := range results {
		if r.Degraded {
			tr.Tiers = append(tr.Tiers, r.DegradationReason)
		}
	}

	entries := buildEntries(analysis, results)
	if totalChunks(entries) == 0 {
		tr.Tiers = append(tr.Tiers, tierNoContext)
		metrics.IncFallback(tierNoContext)
	}

	mode := analysis.SynthesisMode
	text, dropped, err := e.Synth.Synthesize(ctx, question, mode, entries, chatContext)
	tr.DroppedChunks = dropped
	if err != nil && mode != schema.SynthesisModeStandard {
		// Multi-entry synthesis failed; retry against the single
		// richest entry in standard mode before giving up.
		logger.Warnf("turn %s: %s synthesis failed, retrying standard: %v", runID, mode, err)
		tr.Tiers = append(tr.Tiers, tierSingleDocRetry)
		metrics.IncFallback(tierSingleDocRetry)
		mode = schema.SynthesisModeStandard
		best := bestEntry(entries)
		text, dropped, err = e.Synth.Synthesize(ctx, question, mode, best, chatContext)
		if dropped > tr.DroppedChunks {
			tr.DroppedChunks = dropped
		}
	}
	tr.Mode = mode

	if err != nil {
		tr.Err = err.Error()
		tr.Tiers = append(tr.Tiers, tierTotalFailure)
		metrics.IncFallback(tierTotalFailure)
		metrics.ObserveTurn(string(analysis.QueryType), start)
		metrics.IncOutcome("failed")
		logger.Errorf("turn %s: all synthesis attempts failed: %v", runID, err)
		return &schema.Answer{
			Text:    fmt.Sprintf("Unable to answer the question: %v", err),
			Entries: entries,
			Mode:    mode,
			RunID:   runID,
			Failed:  true,
		}, nil
	}

	metrics.ObserveTurn(string(analysis.QueryType), start)
	metrics.IncOutcome("answered")
	return &schema.Answer{
		Text:    text,
		Entries: entries,
		Mode:    mode,
		RunID:   runID,
	}, nil
}

// retrieveSingle handles single_document and general queries with one
// retrieval pass.
func (e *Engine) retrieveSingle(ctx context.Context, analysis *schema.IntentAnalysis, effective string) []schema.RetrievalResult {
	query := effective
	if len(analysis.SearchQueries) > 0 && analysis.SearchQueries[0] != "" {
		query = analysis.SearchQueries[0]
	}
	target := ""
	if len(analysis.Documents) > 0 {
		target = analysis.Documents[0]
	}
	res := e.Retriever.Retrieve(ctx, query, target)
	res.SourceQuery = query
	return []schema.RetrievalResult{res}
}

// retrieveParallel runs one retrieval per document entity concurrently.
// Results land in slots indexed by entity position so the synthesis
// context always follows the order of analysis.Documents.
func (e *Engine) retrieveParallel(ctx context.Context, analysis *schema.IntentAnalysis) []schema.RetrievalResult {
	results := make([]schema.RetrievalResult, len(analysis.Documents))
	resCh := make(chan entityResult, len(analysis.Documents))
	var wg sync.WaitGroup
	for i := range analysis.Documents {
		doc := analysis.Documents[i]
		query := analysis.SearchQueries[i]
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ectx, cancel := context.WithTimeout(ctx, e.Cfg.EntityTimeout())
			defer cancel()
			resCh <- entityResult{slot: slot, result: e.retrieveEntity(ectx, doc, query)}
		}(i)
	}
	wg.Wait()
	close(resCh)
	for er := range resCh {
		results[er.slot] = er.result
	}
	return results
}

// retrieveSequential runs per-entity retrieval one at a time, for
// multi_document questions where each lookup builds on shared backend
// capacity rather than racing it.
func (e *Engine) retrieveSequential(ctx context.Context, analysis *schema.IntentAnalysis) []schema.RetrievalResult {
	results := make([]schema.RetrievalResult, len(analysis.Documents))
	for i := range analysis.Documents {
		ectx, cancel := context.WithTimeout(ctx, e.Cfg.EntityTimeout())
		results[i] = e.retrieveEntity(ectx, analysis.Documents[i], analysis.SearchQueries[i])
		cancel()
	}
	return results
}

// retrieveEntity isolates a single document lookup. A panic or empty
// return never takes down the sibling entities; the slot degrades to an
// empty result instead.
func (e *Engine) retrieveEntity(ctx context.Context, doc string, query string) (res schema.RetrievalResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("entity retrieval panic for %q: %v", doc, r)
			res = schema.RetrievalResult{
				SourceQuery:       query,
				Degraded:          true,
				DegradationReason: fmt.Sprintf("entity retrieval panic: %v", r),
			}
		}
	}()
	res = e.Retriever.Retrieve(ctx, query, doc)
	res.SourceQuery = query
	return res
}

// buildEntries labels each retrieval result for the synthesis prompt.
// Entity lookups are labeled with their document name; single and
// general lookups get a neutral label.
func buildEntries(analysis *schema.IntentAnalysis, results []schema.RetrievalResult) []schema.ContextEntry {
	entries := make([]schema.ContextEntry, 0, len(results))
	for i, r := range results {
		label := "default"
		if i < len(analysis.Documents) && analysis.Documents[i] != "" {
			label = analysis.Documents[i]
		}
		entries = append(entries, schema.ContextEntry{Label: label, Chunks: r.Chunks})
	}
	return entries
}

func totalChunks(entries []schema.ContextEntry) int {
	n := 0
	for _, en := range entries {
		n += len(en.Chunks)
	}
	return n
}

// bestEntry picks the entry with the most chunks, breaking ties by
// original order.
func bestEntry(entries []schema.ContextEntry) []schema.ContextEntry {
	if len(entries) == 0 {
		return nil
	}
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return len(entries[idx[a]].Chunks) > len(entries[idx[b]].Chunks)
	})
	return []schema.ContextEntry{entries[idx[0]]}
}
