package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"docqa/common/logger"
	"docqa/config"
	"docqa/embedder"
	"docqa/schema"
)

// MilvusBackend serves both indexes from two milvus collections holding
// embedded metadata summaries and content chunks. Queries are embedded
// before search; document filters become a boolean expression.
type MilvusBackend struct {
	cli                client.Client
	emb                embedder.Embedder
	metadataCollection string
	chunksCollection   string
	searchEf           int
}

func NewMilvusBackend(cfg *config.Config, emb embedder.Embedder) (*MilvusBackend, error) {
	addr := cfg.Backend.Host
	if cfg.Backend.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Backend.Host, cfg.Backend.Port)
	}
	cli, err := client.NewClient(context.Background(), client.Config{
		Address:  addr,
		Username: cfg.Backend.Username,
		Password: cfg.Backend.Password,
		DBName:   cfg.Backend.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus failed, err: %w", err)
	}
	return &MilvusBackend{
		cli:                cli,
		emb:                emb,
		metadataCollection: cfg.Backend.MetadataIndex,
		chunksCollection:   cfg.Backend.ChunksIndex,
		searchEf:           64,
	}, nil
}

func (b *MilvusBackend) collection(index Index) string {
	if index == IndexMetadata {
		return b.metadataCollection
	}
	return b.chunksCollection
}

func (b *MilvusBackend) Search(ctx context.Context, index Index, query string, filter []string, limit int) ([]schema.ChunkHit, error) {
	if limit <= 0 {
		limit = 10
	}
	vec, err := b.emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed, err: %w", err)
	}
	expr := buildDocumentFilter(filter)
	sp, err := entity.NewIndexHNSWSearchParam(b.searchEf)
	if err != nil {
		return nil, err
	}
	results, err := b.cli.Search(ctx, b.collection(index), nil, expr,
		[]string{"id", "document_id", "content"},
		[]entity.Vector{entity.FloatVector(vec)}, "vector", entity.IP, limit, sp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	out := make([]schema.ChunkHit, 0, limit)
	for _, rs := range results {
		ids := varcharColumn(rs.Fields.GetColumn("id"))
		docIDs := varcharColumn(rs.Fields.GetColumn("document_id"))
		contents := varcharColumn(rs.Fields.GetColumn("content"))
		for i := 0; i < rs.ResultCount; i++ {
			hit := schema.ChunkHit{Score: float64(rs.Scores[i])}
			if i < len(ids) {
				hit.ID = ids[i]
			}
			if i < len(docIDs) {
				hit.DocumentID = docIDs[i]
			}
			if i < len(contents) {
				hit.Content = contents[i]
			}
			out = append(out, hit)
		}
	}
	logger.Debugf("milvus: %s search returned %d hits", index, len(out))
	return out, nil
}

func varcharColumn(col entity.Column) []string {
	vc, ok := col.(*entity.ColumnVarChar)
	if !ok {
		return nil
	}
	return vc.Data()
}

// buildDocumentFilter renders a milvus boolean expression restricting
// hits to the given document IDs. Empty filter means no expression.
func buildDocumentFilter(filter []string) string {
	if len(filter) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(filter))
	for _, id := range filter {
		id = strings.ReplaceAll(id, `\`, `\\`)
		id = strings.ReplaceAll(id, `"`, `\"`)
		quoted = append(quoted, `"`+id+`"`)
	}
	return fmt.Sprintf("document_id in [%s]", strings.Join(quoted, ", "))
}
