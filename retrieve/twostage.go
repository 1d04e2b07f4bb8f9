package retrieve

import (
	"context"

	"docqa/backend"
	"docqa/common/logger"
	"docqa/metrics"
	"docqa/schema"
)

// TwoStage retrieves content chunks in two passes: a metadata search
// discovers candidate documents, then a filtered chunk search pulls content
// from them. When either stage comes back empty the retriever degrades to an
// unfiltered chunk search rather than failing the turn.
type TwoStage struct {
	Backend       backend.SearchBackend
	MetadataLimit int
	ChunkLimit    int
	FilterCap     int
}

const (
	reasonNoMetadata  = "no metadata matches"
	reasonEmptyChunks = "no chunks in filtered search"
)

// Retrieve runs the two-stage search for one query. targetDocumentName, when
// non-empty, biases discovery toward that document. The result is never nil;
// backend failures surface as a degraded result with zero chunks.
func (r *TwoStage) Retrieve(ctx context.Context, searchQuery, targetDocumentName string) schema.RetrievalResult {
	res := schema.RetrievalResult{SourceQuery: searchQuery}

	// Stage A: discover candidate documents via the metadata index.
	metadataQuery := searchQuery
	if targetDocumentName != "" {
		metadataQuery = targetDocumentName + " " + searchQuery
	}
	hits, err := r.Backend.Search(ctx, backend.IndexMetadata, metadataQuery, nil, r.MetadataLimit)
	if err != nil {
		logger.Warnf("retrieve: metadata search failed, degrading to unfiltered: %v", err)
		hits = nil
	}
	docIDs := documentIDs(hits)
	metrics.ObserveStage("metadata", len(docIDs))

	if len(docIDs) == 0 {
		res.Degraded = true
		res.DegradationReason = reasonNoMetadata
		metrics.IncFallback("discovery_empty")
		res.Chunks = r.searchChunks(ctx, searchQuery, nil)
		return res
	}

	if targetDocumentName != "" {
		docIDs = PrioritizeDocuments(targetDocumentName, docIDs)
	}
	if r.FilterCap > 0 && len(docIDs) > r.FilterCap {
		docIDs = docIDs[:r.FilterCap]
	}
	res.DocumentIDs = docIDs

	// Stage B: fetch chunks restricted to the discovered documents.
	chunks, err := r.Backend.Search(ctx, backend.IndexChunks, searchQuery, docIDs, r.ChunkLimit)
	if err != nil {
		logger.Warnf("retrieve: filtered chunk search failed: %v", err)
		chunks = nil
	}
	if len(chunks) == 0 {
		res.Degraded = true
		if res.DegradationReason != "" {
			res.DegradationReason += "; " + reasonEmptyChunks
		} else {
			res.DegradationReason = reasonEmptyChunks
		}
		metrics.IncFallback("retrieval_empty")
		res.Chunks = r.searchChunks(ctx, searchQuery, nil)
		return res
	}
	res.Chunks = chunks
	metrics.ObserveStage("chunks", len(chunks))
	return res
}

// searchChunks is the unfiltered fallback pass over the chunks index.
func (r *TwoStage) searchChunks(ctx context.Context, query string, filter []string) []schema.ChunkHit {
	chunks, err := r.Backend.Search(ctx, backend.IndexChunks, query, filter, r.ChunkLimit)
	if err != nil {
		logger.Warnf("retrieve: unfiltered chunk search failed: %v", err)
		return nil
	}
	metrics.ObserveStage("chunks", len(chunks))
	return chunks
}

func documentIDs(hits []schema.ChunkHit) []string {
	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		id := h.DocumentID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
