package vocab

import (
	"github.com/samcharles93/wordrnn/internal/corpus"
	"github.com/samcharles93/wordrnn/internal/logger"
	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/tokenizer"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// MinFrequency is the count a token must strictly exceed to be kept.
	MinFrequency int
	// WindowLength is the training window; the filtered stream must be
	// longer than it.
	WindowLength int
	Log          logger.Logger
}

// Stats summarises a build.
type Stats struct {
	Documents int
	Total     int
	Retained  int
	Removed   int
}

// Corpus is the frozen output of Build: the vocabulary and the filtered
// token stream encoded as vocabulary indices.
type Corpus struct {
	Vocabulary *Vocabulary
	Stream     []int
	Stats      Stats
}

// Len returns the length of the filtered stream.
func (c *Corpus) Len() int {
	return len(c.Stream)
}

// Tokens decodes the filtered stream.
func (c *Corpus) Tokens() []string {
	out := make([]string, len(c.Stream))
	for i, idx := range c.Stream {
		out[i] = c.Vocabulary.tokens[idx]
	}
	return out
}

// Build tokenizes docs in order, counts every token and admits a token to
// the vocabulary the moment its running count exceeds MinFrequency. Index
// order therefore follows when each token crossed the threshold, not its
// final frequency. Tokens never admitted are then dropped from the stream.
func Build(docs []corpus.Document, tok tokenizer.Tokenizer, opts BuildOptions) (*Corpus, error) {
	if opts.MinFrequency < 0 {
		return nil, model.NewConfigurationError("min-frequency", "must be >= 0, got %d", opts.MinFrequency)
	}
	if opts.WindowLength <= 0 {
		return nil, model.NewConfigurationError("window-length", "must be > 0, got %d", opts.WindowLength)
	}
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}

	var (
		all    []string
		freq   = make(map[string]int)
		index  = make(map[string]int)
		tokens []string
	)
	for _, doc := range docs {
		for _, t := range tok.Tokenize(doc.Content) {
			all = append(all, t)
			freq[t]++
			if freq[t] > opts.MinFrequency {
				if _, ok := index[t]; !ok {
					index[t] = len(tokens)
					tokens = append(tokens, t)
				}
			}
		}
	}

	stream := make([]int, 0, len(all))
	for _, t := range all {
		if idx, ok := index[t]; ok {
			stream = append(stream, idx)
		}
	}

	stats := Stats{
		Documents: len(docs),
		Total:     len(all),
		Retained:  len(stream),
		Removed:   len(all) - len(stream),
	}
	log.Info("loaded corpus",
		"documents", stats.Documents,
		"retained", stats.Retained,
		"total", stats.Total,
		"removed", stats.Removed,
		"vocabulary", len(tokens),
	)

	if opts.WindowLength >= len(stream) {
		return nil, model.NewConfigurationError("window-length",
			"%d cannot exceed number of retained tokens (%d)", opts.WindowLength, len(stream))
	}

	return &Corpus{
		Vocabulary: &Vocabulary{tokens: tokens, index: index},
		Stream:     stream,
		Stats:      stats,
	}, nil
}
