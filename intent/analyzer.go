package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docqa/common/logger"
	"docqa/llm"
	"docqa/schema"
)

// Analyzer classifies a question and extracts the documents and per-document
// search queries needed to answer it. Analyze never returns an error: any
// model or parse failure degrades to a standard single-document plan.
type Analyzer struct {
	Provider    llm.Provider
	MaxEntities int
}

const analysisPrompt = `Analyze this user question and determine the search strategy needed:

Question: "%s"

Determine:
1. Query type:
   - "single_document": Looking for info from one document or general topic
   - "comparison": Comparing 2+ specific documents or entities
   - "multi_document": Asking about multiple separate topics/documents
   - "general": General question not tied to specific documents

2. If comparison or multi_document, extract the specific document names or key topics

3. Create search queries - for comparisons, create separate queries for each document

4. Analysis type needed for final response

Respond in valid JSON format only:
{
    "query_type": "comparison|single_document|multi_document|general",
    "documents": ["document name 1", "document name 2"],
    "search_queries": ["search query 1", "search query 2"],
    "analysis_type": "comparison|synthesis|standard",
    "reasoning": "brief explanation of the analysis"
}

Examples:
- "Compare X and Y agreements" -> comparison type, separate searches for X and Y
- "What are the terms in the X contract?" -> single_document type
- "Tell me about privacy policies" -> general type`

// Analyze produces a routing decision for the effective query.
func (a *Analyzer) Analyze(ctx context.Context, query string) *schema.IntentAnalysis {
	raw, err := a.Provider.GenerateJSON(ctx, fmt.Sprintf(analysisPrompt, query))
	if err != nil {
		logger.Warnf("intent: analysis call failed: %v", err)
		return fallbackAnalysis(query)
	}
	analysis := &schema.IntentAnalysis{}
	cleaned := extractJSON(raw)
	if cleaned == "" || json.Unmarshal([]byte(cleaned), analysis) != nil {
		logger.Warnf("intent: unparseable analysis response: %.200s", raw)
		return fallbackAnalysis(query)
	}
	a.normalize(analysis, query)
	return analysis
}

// normalize enforces the structural invariants on a parsed analysis.
func (a *Analyzer) normalize(an *schema.IntentAnalysis, query string) {
	if !an.QueryType.Valid() {
		an.QueryType = schema.QueryTypeSingleDocument
	}
	if !an.SynthesisMode.Valid() {
		an.SynthesisMode = schema.SynthesisModeStandard
	}

	an.Documents = trimEmpty(an.Documents)
	an.SearchQueries = trimEmpty(an.SearchQueries)

	switch an.QueryType {
	case schema.QueryTypeComparison, schema.QueryTypeMultiDocument:
		if len(an.Documents) == 0 {
			// Nothing to fan out over; treat as a general question.
			an.QueryType = schema.QueryTypeGeneral
			an.SynthesisMode = schema.SynthesisModeStandard
			an.SearchQueries = clampQueries(an.SearchQueries, query)
			return
		}
		if a.MaxEntities > 0 && len(an.Documents) > a.MaxEntities {
			logger.Infof("intent: capping %d entities to %d", len(an.Documents), a.MaxEntities)
			an.Documents = an.Documents[:a.MaxEntities]
		}
		// Reconcile pair lengths: backfill missing queries, truncate extras.
		for len(an.SearchQueries) < len(an.Documents) {
			an.SearchQueries = append(an.SearchQueries, an.Documents[len(an.SearchQueries)]+" "+query)
		}
		an.SearchQueries = an.SearchQueries[:len(an.Documents)]
		if an.SynthesisMode == schema.SynthesisModeStandard {
			if an.QueryType == schema.QueryTypeComparison {
				an.SynthesisMode = schema.SynthesisModeComparison
			} else {
				an.SynthesisMode = schema.SynthesisModeSynthesis
			}
		}
	default:
		if len(an.Documents) > 1 {
			an.Documents = an.Documents[:1]
		}
		an.SearchQueries = clampQueries(an.SearchQueries, query)
		an.SynthesisMode = schema.SynthesisModeStandard
	}
}

func clampQueries(queries []string, query string) []string {
	if len(queries) == 0 {
		return []string{query}
	}
	return queries[:1]
}

func trimEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func fallbackAnalysis(query string) *schema.IntentAnalysis {
	return &schema.IntentAnalysis{
		QueryType:     schema.QueryTypeSingleDocument,
		Documents:     []string{},
		SearchQueries: []string{query},
		SynthesisMode: schema.SynthesisModeStandard,
		Reasoning:     "fallback: unparseable analysis",
	}
}

// extractJSON strips markdown code fences and cuts the outermost JSON object
// out of a model response.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
