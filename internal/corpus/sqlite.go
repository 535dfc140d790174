package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samcharles93/wordrnn/internal/logger"

	_ "modernc.org/sqlite"
)

// DefaultQuery selects (id, content) rows from the news corpus table.
const DefaultQuery = "select id, post_content from xb_corpus"

// SQLiteSource reads documents from a SQLite database. Query must return
// two columns: an id and the document text.
type SQLiteSource struct {
	Path  string
	Query string
	Log   logger.Logger
}

func (s SQLiteSource) Load(ctx context.Context) ([]Document, error) {
	if s.Path == "" {
		return nil, errors.New("corpus: sqlite path is empty")
	}
	query := s.Query
	if query == "" {
		query = DefaultQuery
	}
	log := s.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", s.Path, err)
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("corpus: query %s: %w", s.Path, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var (
			id      string
			content sql.NullString
		)
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("corpus: scan row %d: %w", len(docs), err)
		}
		docs = append(docs, Document{ID: id, Content: StripMarkup(content.String)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read rows: %w", err)
	}

	logPreview(log, docs)
	log.Info("loaded documents", "source", s.Path, "documents", len(docs))
	return docs, nil
}
