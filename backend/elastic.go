package backend

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "path"

    "docqa/common/httpx"
    "docqa/schema"
)

// ElasticBackend queries an Elasticsearch-like service using a simple multi_match.
// Endpoint example: http://es:9200
// The two logical indexes map to the configured index names.
type ElasticBackend struct {
    Endpoint      string
    MetadataIndex string
    ChunksIndex   string
    Username      string
    Password      string
    Client        *httpx.Client
}

type esSearchRequest struct {
    Size  int                    `json:"size"`
    Query map[string]interface{} `json:"query"`
}

type esHit struct {
    ID     string                 `json:"_id"`
    Score  float64                `json:"_score"`
    Source map[string]interface{} `json:"_source"`
}
type esHits struct {
    Hits []esHit `json:"hits"`
}
type esSearchResponse struct {
    Hits esHits `json:"hits"`
}

func (b *ElasticBackend) indexName(index Index) string {
    if index == IndexMetadata { return b.MetadataIndex }
    return b.ChunksIndex
}

func (b *ElasticBackend) Search(ctx context.Context, index Index, query string, filter []string, limit int) ([]schema.ChunkHit, error) {
    name := b.indexName(index)
    if b.Endpoint == "" || name == "" {
        return []schema.ChunkHit{}, nil
    }
    if limit <= 0 { limit = 10 }

    match := map[string]interface{}{
        "multi_match": map[string]interface{}{
            "query":  query,
            "fields": []string{"content^2", "document_id", "attributes.*"},
        },
    }
    var q map[string]interface{}
    if len(filter) > 0 {
        q = map[string]interface{}{
            "bool": map[string]interface{}{
                "must":   match,
                "filter": map[string]interface{}{"terms": map[string]interface{}{"document_id": filter}},
            },
        }
    } else {
        q = match
    }
    bs, _ := json.Marshal(esSearchRequest{Size: limit, Query: q})

    // Build URL: {endpoint}/{index}/_search
    u, err := url.Parse(b.Endpoint)
    if err != nil { return nil, err }
    u.Path = path.Join(u.Path, name, "_search")
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(bs))
    if err != nil { return nil, err }
    req.Header.Set("Content-Type", "application/json")
    if b.Username != "" {
        req.SetBasicAuth(b.Username, b.Password)
    }
    if b.Client == nil {
        return nil, fmt.Errorf("elastic http client not configured")
    }
    resp, err := b.Client.Do(req)
    if err != nil { return nil, fmt.Errorf("%w: %v", ErrUnavailable, err) }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return nil, fmt.Errorf("%w: http status %d", ErrUnavailable, resp.StatusCode)
    }
    var esr esSearchResponse
    if err := json.NewDecoder(resp.Body).Decode(&esr); err != nil {
        return nil, err
    }
    out := make([]schema.ChunkHit, 0, len(esr.Hits.Hits))
    for _, h := range esr.Hits.Hits {
        content := ""
        if v, ok := h.Source["content"].(string); ok { content = v }
        docID := ""
        if v, ok := h.Source["document_id"].(string); ok { docID = v }
        attrs := map[string]any{}
        for k, v := range h.Source {
            if k == "content" || k == "document_id" { continue }
            attrs[k] = v
        }
        out = append(out, schema.ChunkHit{ID: h.ID, DocumentID: docID, Score: h.Score, Content: content, Attributes: attrs})
    }
    return out, nil
}
