// Package corpus loads training documents from a backing store.
package corpus

import (
	"context"
	"regexp"
	"unicode/utf8"

	"github.com/samcharles93/wordrnn/internal/logger"
)

// Document is one unit of source text.
type Document struct {
	ID      string
	Content string
}

// Source yields a finite, ordered list of documents.
type Source interface {
	Load(ctx context.Context) ([]Document, error)
}

var paragraphTag = regexp.MustCompile(`\[p id="\d+"\]`)

// StripMarkup removes paragraph anchors of the form [p id="123"].
func StripMarkup(content string) string {
	return paragraphTag.ReplaceAllString(content, "")
}

const (
	previewDocs  = 10
	previewRunes = 200
)

// logPreview writes the first few documents at debug level.
func logPreview(log logger.Logger, docs []Document) {
	for i, d := range docs {
		if i >= previewDocs {
			return
		}
		log.Debug("document", "id", d.ID, "content", truncateRunes(d.Content, previewRunes))
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
