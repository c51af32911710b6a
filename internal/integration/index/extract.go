package index

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/unidoc/unioffice/document"
)

// ErrNoExtractor marks a stored file type that has no text extractor.
// Such files stay listed and stored but contribute nothing to the index.
var ErrNoExtractor = errors.New("no text extractor for file type")

// ExtractText converts a stored file's raw bytes into plain text.
func ExtractText(name string, content []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".csv":
		return string(content), nil
	case ".docx":
		return extractDocx(content)
	default:
		return "", ErrNoExtractor
	}
}

func extractDocx(content []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// SplitText cuts text into rune-based chunks of at most size runes with
// the given overlap between consecutive chunks. Whitespace-only chunks
// are dropped.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
