package retrieve

import (
	"reflect"
	"testing"
)

func TestPrioritizeDocuments(t *testing.T) {
	tests := []struct {
		name       string
		docName    string
		candidates []string
		want       []string
	}{
		{
			name:       "matching candidate moves first",
			docName:    "Chase Affiliate Agreement",
			candidates: []string{"pizza_fusion.pdf", "chase_affiliate_2021.pdf"},
			want:       []string{"chase_affiliate_2021.pdf", "pizza_fusion.pdf"},
		},
		{
			name:       "no significant words keeps input order",
			docName:    "a an of",
			candidates: []string{"b.pdf", "a.pdf"},
			want:       []string{"b.pdf", "a.pdf"},
		},
		{
			name:       "order within partitions is stable",
			docName:    "Affiliate Agreement",
			candidates: []string{"x_affiliate_1.pdf", "y.pdf", "z_agreement.pdf", "w.pdf"},
			want:       []string{"x_affiliate_1.pdf", "z_agreement.pdf", "y.pdf", "w.pdf"},
		},
		{
			name:       "match is case insensitive",
			docName:    "CHASE agreement",
			candidates: []string{"other.pdf", "Chase_2020.PDF"},
			want:       []string{"Chase_2020.PDF", "other.pdf"},
		},
		{
			name:       "short words are not significant",
			docName:    "the big doc",
			candidates: []string{"doc_big.pdf", "other.pdf"},
			want:       []string{"doc_big.pdf", "other.pdf"},
		},
		{
			name:       "empty document name keeps input order",
			docName:    "",
			candidates: []string{"b.pdf", "a.pdf"},
			want:       []string{"b.pdf", "a.pdf"},
		},
		{
			name:       "empty candidates",
			docName:    "Chase Agreement",
			candidates: []string{},
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrioritizeDocuments(tt.docName, tt.candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PrioritizeDocuments(%q, %v) = %v, want %v", tt.docName, tt.candidates, got, tt.want)
			}
		})
	}
}

func TestPrioritizeDocumentsDoesNotMutateInput(t *testing.T) {
	in := []string{"pizza_fusion.pdf", "chase_affiliate_2021.pdf"}
	_ = PrioritizeDocuments("Chase Affiliate Agreement", in)
	if in[0] != "pizza_fusion.pdf" || in[1] != "chase_affiliate_2021.pdf" {
		t.Errorf("input slice was mutated: %v", in)
	}
}
