package prompt

import (
	"fmt"
	"strings"
)

// NoInformationSentence is the sentence the model is told to emit verbatim
// when the context cannot answer the question.
const NoInformationSentence = "Based on the provided FLCS documents, I don't have specific information about that topic."

// NotHelpfulMarker is searched for in grounded answers. A paraphrased refusal
// will not contain it.
const NotHelpfulMarker = "don't have specific information"

const (
	contextDelimiter = "\n\n---\n"
	noContext        = "No relevant context found."
	noResults        = "No web results found."
)

// Grounded builds the prompt that restricts the answer to retrieved passages.
func Grounded(question string, passages []string) string {
	block := join(passages, contextDelimiter)
	if block == "" {
		block = noContext
	}

	var b strings.Builder
	b.WriteString("You are an expert student counselor AI assistant for FLCS Consultancy.\n")
	b.WriteString("Answer ONLY using the information in the Context. If the Context does not contain the answer, say:\n")
	fmt.Fprintf(&b, "%q\n\n", NoInformationSentence)
	b.WriteString("Format your answer in Markdown with short paragraphs and bullet points where helpful.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(block)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// Web builds the stricter prompt used when only web snippets are available.
func Web(question string, snippets []string) string {
	var results strings.Builder
	n := 0
	for _, s := range snippets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n++
		fmt.Fprintf(&results, "[%d] %s\n", n, s)
	}
	block := strings.TrimRight(results.String(), "\n")
	if block == "" {
		block = noResults
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant for FLCS Consultancy, a study-abroad agency.\n")
	b.WriteString("Answer the question using ONLY the web search results below. Do not add facts that are not in the results.\n")
	b.WriteString("Keep the answer under 150 words and format it in Markdown.\n\n")
	b.WriteString("Web results:\n")
	b.WriteString(block)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

func join(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
