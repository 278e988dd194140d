package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"flcs-chatbot-be/pkg/utils"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Chunk is one indexable passage and where it came from.
type Chunk struct {
	Text   string
	Source string
	Page   int
}

// Document is every chunk of one source file.
type Document struct {
	Source string
	Chunks []Chunk
}

type Options struct {
	ChunkSize int
	Overlap   int
}

func DefaultOptions() Options {
	return Options{ChunkSize: 1500, Overlap: 150}
}

// LoadDir reads every supported file under dir. Text and markdown files are
// paged on form feeds (pdftotext output); HTML is converted to markdown and
// treated as a single page. Unsupported files are returned in skipped.
func LoadDir(dir string, opts Options) (docs []Document, skipped []string, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		doc, ok, err := loadFile(path, opts)
		if err != nil {
			return err
		}
		if !ok {
			skipped = append(skipped, path)
			return nil
		}
		if len(doc.Chunks) > 0 {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return docs, skipped, nil
}

func loadFile(path string, opts Options) (Document, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".html", ".htm":
	default:
		return Document{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	text := string(data)
	if ext == ".html" || ext == ".htm" {
		text, err = htmltomarkdown.ConvertString(text)
		if err != nil {
			return Document{}, false, fmt.Errorf("convert %s: %w", path, err)
		}
	}

	source := filepath.Base(path)
	doc := Document{Source: source}
	for i, page := range utils.SplitPages(text) {
		for _, part := range utils.SplitText(page, opts.ChunkSize, opts.Overlap) {
			doc.Chunks = append(doc.Chunks, Chunk{Text: part, Source: source, Page: i + 1})
		}
	}
	return doc, true, nil
}
