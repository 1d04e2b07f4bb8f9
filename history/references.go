package history

import (
	"fmt"
	"sort"
	"strings"

	"docqa/schema"
)

const (
	maxDisplayName     = 50
	maxPreview         = 150
	maxChunksPerSource = 3
)

type refDoc struct {
	displayName string
	fileURL     string
	previews    []refPreview
	firstSeen   int
}

type refPreview struct {
	text  string
	index int
}

// BuildReferences renders a markdown sources section for the chunks behind an
// answer: one block per document in order of first appearance, with up to
// three short unique excerpt previews each.
func BuildReferences(results []schema.RetrievalResult) string {
	docs := map[string]*refDoc{}
	n := 0
	for _, res := range results {
		for _, c := range res.Chunks {
			n++
			if c.DocumentID == "" {
				continue
			}
			d, ok := docs[c.DocumentID]
			if !ok {
				d = &refDoc{displayName: displayName(c.DocumentID), fileURL: fileURL(c), firstSeen: n}
				docs[c.DocumentID] = d
			}
			preview := previewOf(c.Content)
			if preview == "" || d.hasPreview(preview) {
				continue
			}
			d.previews = append(d.previews, refPreview{text: preview, index: n})
		}
	}
	if len(docs) == 0 {
		return ""
	}

	ordered := make([]*refDoc, 0, len(docs))
	for _, d := range docs {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].firstSeen < ordered[j].firstSeen })

	var b strings.Builder
	b.WriteString("###### Sources & References\n\n")
	totalPreviews := 0
	for _, d := range ordered {
		if d.fileURL != "" {
			b.WriteString(fmt.Sprintf("**[%s](%s)**\n", d.displayName, d.fileURL))
		} else {
			b.WriteString(fmt.Sprintf("**%s**\n", d.displayName))
		}
		previews := d.previews
		if len(previews) > maxChunksPerSource {
			previews = previews[:maxChunksPerSource]
		}
		for _, p := range previews {
			b.WriteString(fmt.Sprintf("- *Excerpt %d:* %q\n", p.index, p.text))
		}
		totalPreviews += len(d.previews)
		b.WriteString("\n")
	}
	if len(ordered) > 1 {
		b.WriteString(fmt.Sprintf("*Total: %d documents, %d relevant excerpts*\n", len(ordered), totalPreviews))
	}
	return b.String()
}

func (d *refDoc) hasPreview(p string) bool {
	for _, existing := range d.previews {
		if existing.text == p {
			return true
		}
	}
	return false
}

func displayName(documentID string) string {
	name := documentID
	for _, ext := range []string{".pdf", ".docx", ".txt"} {
		name = strings.TrimSuffix(name, ext)
	}
	if len(name) > maxDisplayName {
		name = name[:maxDisplayName-3] + "..."
	}
	return name
}

func previewOf(content string) string {
	clean := strings.TrimSpace(strings.ReplaceAll(content, "\n", " "))
	if len(clean) > maxPreview {
		return clean[:maxPreview-3] + "..."
	}
	return clean
}

func fileURL(c schema.ChunkHit) string {
	if c.Attributes == nil {
		return ""
	}
	if v, ok := c.Attributes["file_url"].(string); ok {
		return v
	}
	return ""
}
