package rag

import (
	"fmt"
	"strings"

	"flcs-chatbot-be/pkg/vectorindex"
)

// SourcesFooter lists each distinct "source (Page n)" pair once, in
// retrieval order. Passages without both fields are ignored.
func SourcesFooter(passages []vectorindex.Passage) string {
	seen := make(map[string]struct{}, len(passages))
	labels := make([]string, 0, len(passages))
	for _, p := range passages {
		if p.Source == "" || p.Page <= 0 {
			continue
		}
		label := fmt.Sprintf("%s (Page %d)", p.Source, p.Page)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return ""
	}
	return "\n\n---\n*Sources: " + strings.Join(labels, ", ") + "*"
}
