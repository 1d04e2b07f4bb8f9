package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa/common/httpx"
	"docqa/config"
	"docqa/embedder"
	"docqa/schema"
)

// Index selects which of the two search indexes a query targets.
type Index string

const (
	// IndexMetadata holds one summary entry per document, used for discovery.
	IndexMetadata Index = "metadata"
	// IndexChunks holds the content chunks, searched with an optional document filter.
	IndexChunks Index = "chunks"
)

// ErrUnavailable indicates the backend could not be reached. Empty results
// are returned as zero hits, not as an error.
var ErrUnavailable = errors.New("search backend unavailable")

// SearchBackend performs a relevance search against one index. A non-empty
// filter restricts chunk hits to the given document IDs.
type SearchBackend interface {
	Search(ctx context.Context, index Index, query string, filter []string, limit int) ([]schema.ChunkHit, error)
}

// NewSearchBackend creates a backend from configuration.
func NewSearchBackend(cfg *config.Config) (SearchBackend, error) {
	switch strings.ToLower(cfg.Backend.Provider) {
	case "elastic":
		return &ElasticBackend{
			Endpoint:      cfg.Backend.Endpoint,
			MetadataIndex: cfg.Backend.MetadataIndex,
			ChunksIndex:   cfg.Backend.ChunksIndex,
			Username:      cfg.Backend.Username,
			Password:      cfg.Backend.Password,
			Client:        httpx.NewFromConfig(cfg.HTTP),
		}, nil
	case "milvus":
		emb, err := embedder.NewOpenAIEmbedder(cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("create embedder failed, err: %w", err)
		}
		return NewMilvusBackend(cfg, emb)
	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", cfg.Backend.Provider)
	}
}
