package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/samcharles93/wordrnn/internal/corpus"
	"github.com/samcharles93/wordrnn/internal/dataset"
	"github.com/samcharles93/wordrnn/internal/logger"
	"github.com/samcharles93/wordrnn/internal/tokenizer"
	"github.com/samcharles93/wordrnn/internal/toy"
	"github.com/samcharles93/wordrnn/internal/vocab"
)

// stdinDocument names the single document read when --corpus-dir is "-".
const stdinDocument = "stdin"

// documentSource picks the corpus source from the flags. A corpus directory
// wins over a database; "-" reads one document from stdin.
func documentSource(log logger.Logger, stdin io.Reader) (corpus.Source, error) {
	switch {
	case corpusDir == "-":
		text, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read corpus from stdin: %w", err)
		}
		return corpus.Static{{ID: stdinDocument, Content: string(text)}}, nil
	case corpusDir != "":
		return corpus.DirSource{Dir: corpusDir, Log: log}, nil
	case database != "":
		return corpus.SQLiteSource{Path: database, Query: query, Log: log}, nil
	default:
		return nil, errors.New("--db, --corpus-dir or $" + envDatabase + " is required")
	}
}

func newTokenizer(log logger.Logger) (tokenizer.Tokenizer, error) {
	pp, err := tokenizer.ParsePreProcessors(preprocess)
	if err != nil {
		return nil, err
	}
	return tokenizer.New(tokenizerArg, tokenizer.Options{
		PreProcessor: pp,
		DropPunct:    dropPunct,
		OnLongToken: func(tok string) {
			log.Debug("skipping long token", "runes", len([]rune(tok)))
		},
	})
}

// loadCorpus reads the documents and builds the vocabulary and token stream.
func loadCorpus(ctx context.Context, log logger.Logger, stdin io.Reader) (*vocab.Corpus, error) {
	src, err := documentSource(log, stdin)
	if err != nil {
		return nil, err
	}
	tok, err := newTokenizer(log)
	if err != nil {
		return nil, err
	}
	docs, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	c, err := vocab.Build(docs, tok, vocab.BuildOptions{
		MinFrequency: int(minFrequency),
		WindowLength: int(windowLength),
		Log:          log,
	})
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	return c, nil
}

// newPipeline wires the iterator and a freshly initialised model to c.
func newPipeline(c *vocab.Corpus) (*dataset.Iterator, *toy.ContextLM, error) {
	it, err := dataset.NewIterator(c, dataset.Config{
		WindowLength: int(windowLength),
		BatchSize:    int(batchSize),
		Seed:         seed,
	})
	if err != nil {
		return nil, nil, err
	}
	m, err := toy.New(toy.Config{
		Vocab:        c.Vocabulary.Size(),
		Hidden:       int(hidden),
		Decay:        float32(decay),
		LearningRate: float32(learningRate),
		Seed:         seed,
	})
	if err != nil {
		return nil, nil, err
	}
	return it, m, nil
}

// sampleRand is kept apart from the iterator's shuffle source so sampling
// does not change the batch order.
func sampleRand() *rand.Rand {
	return rand.New(rand.NewSource(seed + 1))
}
