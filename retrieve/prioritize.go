package retrieve

import "strings"

// PrioritizeDocuments reorders candidate document IDs so that those matching
// the target document name come first. Words of the name longer than three
// characters are significant; a candidate matches when it contains any
// significant word, case-insensitively. Order within each partition is
// preserved. Without significant words the input order is returned unchanged.
func PrioritizeDocuments(documentName string, candidates []string) []string {
	words := significantWords(documentName)
	out := make([]string, 0, len(candidates))
	if len(words) == 0 {
		return append(out, candidates...)
	}
	var rest []string
	for _, c := range candidates {
		lower := strings.ToLower(c)
		matched := false
		for _, w := range words {
			if strings.Contains(lower, w) {
				matched = true
				break
			}
		}
		if matched {
			out = append(out, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(out, rest...)
}

func significantWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	return words
}
