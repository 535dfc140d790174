// Package trainer runs the epoch loop: it drains the sequence iterator into
// the model and periodically writes sampled text.
package trainer

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/wordrnn/internal/dataset"
	"github.com/samcharles93/wordrnn/internal/generate"
	"github.com/samcharles93/wordrnn/internal/logger"
	"github.com/samcharles93/wordrnn/internal/model"
)

// Config controls a training run.
type Config struct {
	Epochs int
	// SampleEvery writes samples after every N minibatches; 0 disables it.
	SampleEvery  int
	Samples      int
	SampleLength int
	Joiner       string
	Temperature  float64

	// Out receives sample blocks. Nil discards them.
	Out  io.Writer
	Log  logger.Logger
	Rand *rand.Rand
}

// Result summarises a finished run.
type Result struct {
	RunID       string
	Epochs      int
	Minibatches int
	LastLoss    float64
	Elapsed     time.Duration
}

// Trainer binds a model to its data.
type Trainer struct {
	Model    model.Recurrent
	Iterator *dataset.Iterator
	Config   Config
}

// New validates cfg and returns a Trainer.
func New(m model.Recurrent, it *dataset.Iterator, cfg Config) (*Trainer, error) {
	if cfg.Epochs <= 0 {
		return nil, model.NewConfigurationError("epochs", "must be > 0, got %d", cfg.Epochs)
	}
	if cfg.SampleEvery < 0 {
		return nil, model.NewConfigurationError("sample_every", "must be >= 0, got %d", cfg.SampleEvery)
	}
	if cfg.SampleEvery > 0 {
		if cfg.Samples <= 0 {
			return nil, model.NewConfigurationError("samples", "must be > 0, got %d", cfg.Samples)
		}
		if cfg.SampleLength < 0 {
			return nil, model.NewConfigurationError("sample_length", "must be >= 0, got %d", cfg.SampleLength)
		}
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	return &Trainer{Model: m, Iterator: it, Config: cfg}, nil
}

// Run trains for the configured number of epochs, resetting the iterator
// after each one.
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	cfg := t.Config
	res := Result{RunID: uuid.NewString()}
	log := cfg.Log.With("run", res.RunID)
	start := time.Now()

	log.Info("number of parameters in network", "parameters", t.Model.NumParameters())
	log.Info("training",
		"epochs", cfg.Epochs,
		"batches_per_epoch", t.Iterator.EpochSize(),
		"batch_size", t.Iterator.BatchSize(),
		"window_length", t.Iterator.WindowLength(),
		"vocabulary", t.Iterator.Inputs(),
	)

	gen := generate.New(t.Model, t.Iterator.Vocabulary(), cfg.Rand)
	gen.Joiner = cfg.Joiner

	for epoch := range cfg.Epochs {
		log.Info("starting epoch", "epoch", epoch+1)
		for t.Iterator.HasNext() {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			batch, err := t.Iterator.Next()
			if err != nil {
				return res, fmt.Errorf("trainer: epoch %d: %w", epoch+1, err)
			}
			loss, err := t.Model.Train(batch.Input, batch.Labels)
			if err != nil {
				return res, fmt.Errorf("trainer: epoch %d minibatch %d: %w", epoch+1, res.Minibatches+1, err)
			}
			res.Minibatches++
			res.LastLoss = loss

			if cfg.SampleEvery == 0 || res.Minibatches%cfg.SampleEvery != 0 {
				continue
			}
			log.Info("completed minibatches",
				"minibatches", res.Minibatches,
				"batch_size", t.Iterator.BatchSize(),
				"window_length", t.Iterator.WindowLength(),
				"loss", loss,
			)
			samples, err := gen.Generate(ctx, generate.Options{
				Samples:     cfg.Samples,
				Steps:       cfg.SampleLength,
				Temperature: cfg.Temperature,
			})
			if err != nil {
				return res, fmt.Errorf("trainer: sampling: %w", err)
			}
			if err := WriteSamples(cfg.Out, samples); err != nil {
				return res, err
			}
		}
		t.Iterator.Reset()
		res.Epochs++
	}

	res.Elapsed = time.Since(start)
	log.Info("training complete", "minibatches", res.Minibatches, "loss", res.LastLoss, "elapsed", res.Elapsed)
	return res, nil
}

// WriteSamples writes each sample under a numbered header followed by a
// blank line.
func WriteSamples(w io.Writer, samples []generate.Sample) error {
	for i, s := range samples {
		if _, err := fmt.Fprintf(w, "----- Sample %d -----\n%s\n\n", i, s.Text); err != nil {
			return fmt.Errorf("trainer: write samples: %w", err)
		}
	}
	return nil
}
