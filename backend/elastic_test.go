package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/common/httpx"
)

func newElasticFixture(t *testing.T, handler http.HandlerFunc) *ElasticBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &ElasticBackend{
		Endpoint:      srv.URL,
		MetadataIndex: "doc-meta",
		ChunksIndex:   "doc-chunks",
		Client:        httpx.NewFromConfig(nil),
	}
}

func TestElasticSearchRequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	be := newElasticFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"hits": {"hits": [
			{"_id": "1", "_score": 2.5, "_source": {"content": "termination terms", "document_id": "chase.pdf", "file_url": "http://files/chase.pdf"}}
		]}}`))
	})

	hits, err := be.Search(context.Background(), IndexChunks, "termination clause", []string{"chase.pdf"}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath != "/doc-chunks/_search" {
		t.Errorf("path = %q", gotPath)
	}
	if size, _ := gotBody["size"].(float64); int(size) != 5 {
		t.Errorf("size = %v", gotBody["size"])
	}
	boolQ, ok := gotBody["query"].(map[string]any)["bool"].(map[string]any)
	if !ok {
		t.Fatalf("filtered query should be wrapped in bool, got %v", gotBody["query"])
	}
	if _, ok := boolQ["filter"].(map[string]any)["terms"]; !ok {
		t.Errorf("missing terms filter: %v", boolQ["filter"])
	}

	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	h := hits[0]
	if h.DocumentID != "chase.pdf" || h.Content != "termination terms" || h.Score != 2.5 {
		t.Errorf("hit = %+v", h)
	}
	if h.Attributes["file_url"] != "http://files/chase.pdf" {
		t.Errorf("attributes = %v", h.Attributes)
	}
}

func TestElasticSearchUnfiltered(t *testing.T) {
	var gotBody map[string]any
	be := newElasticFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"hits": {"hits": []}}`))
	})

	if _, err := be.Search(context.Background(), IndexMetadata, "chase affiliate", nil, 50); err != nil {
		t.Fatalf("Search: %v", err)
	}
	q := gotBody["query"].(map[string]any)
	if _, ok := q["multi_match"]; !ok {
		t.Errorf("unfiltered query should be a bare multi_match, got %v", q)
	}
	if _, ok := q["bool"]; ok {
		t.Errorf("unfiltered query must not carry a bool wrapper: %v", q)
	}
}

func TestElasticSearchServerError(t *testing.T) {
	be := newElasticFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := be.Search(context.Background(), IndexChunks, "anything", nil, 5)
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}
