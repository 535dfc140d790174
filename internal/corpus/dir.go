package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samcharles93/wordrnn/internal/logger"
)

// DirSource treats every *.txt file in Dir as one document, in lexical
// file name order.
type DirSource struct {
	Dir string
	Log logger.Logger
}

func (s DirSource) Load(ctx context.Context) ([]Document, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return nil, errors.New("corpus: directory is empty")
	}
	log := s.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}

	ents, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("corpus: %w", err)
		}
		docs = append(docs, Document{ID: name, Content: StripMarkup(string(data))})
	}

	logPreview(log, docs)
	log.Info("loaded documents", "source", s.Dir, "documents", len(docs))
	return docs, nil
}

// Static is a Source over an in-memory document list, such as text piped on
// stdin.
type Static []Document

func (s Static) Load(context.Context) ([]Document, error) {
	out := make([]Document, len(s))
	for i, d := range s {
		out[i] = Document{ID: d.ID, Content: StripMarkup(d.Content)}
	}
	return out, nil
}
