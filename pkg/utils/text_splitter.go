package utils

import (
	"strings"
	"unicode"
)

// SplitPages splits extracted document text on form feeds, the page separator
// pdftotext emits. Pages are numbered from 1 and blank pages keep their number.
func SplitPages(text string) []string {
	return strings.Split(text, "\f")
}

// SplitText cuts text into chunks of at most chunkSize runes, each starting
// overlap runes before the previous one ended. A cut is moved back to the
// last whitespace in the second half of the window so words stay whole.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	for start := 0; start < len(runes); {
		for start < len(runes) && unicode.IsSpace(runes[start]) {
			start++
		}
		if start == len(runes) {
			break
		}

		end := start + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastSpace(runes[start:end]); cut > chunkSize/2 {
			end = start + cut
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return -1
}
