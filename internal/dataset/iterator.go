// Package dataset turns a filtered token stream into shuffled minibatches of
// one-hot encoded training windows.
package dataset

import (
	"math/rand"

	"gorgonia.org/tensor"

	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/vocab"
)

// Config configures an Iterator.
type Config struct {
	// WindowLength is the number of time steps per example.
	WindowLength int
	// BatchSize is the maximum number of examples per minibatch.
	BatchSize int
	// Seed seeds the shuffle of window offsets.
	Seed int64
}

// Batch is one minibatch. Input and Labels share the shape
// (examples, vocabularySize, windowLength); Labels is Input shifted one
// token ahead. Offsets lists the stream position of each example.
type Batch struct {
	Input   *tensor.Dense
	Labels  *tensor.Dense
	Offsets []int
}

// Examples returns the number of examples in the batch.
func (b *Batch) Examples() int {
	return len(b.Offsets)
}

// Iterator yields every window of an epoch exactly once in shuffled order.
// Callers check HasNext before Next and call Reset between epochs.
//
// An Iterator is not safe for concurrent use.
type Iterator struct {
	stream  []int
	vocab   *vocab.Vocabulary
	window  int
	batch   int
	rng     *rand.Rand
	pending []int
	epoch   int
}

// NewIterator validates cfg and prepares the first epoch.
func NewIterator(c *vocab.Corpus, cfg Config) (*Iterator, error) {
	if cfg.BatchSize <= 0 {
		return nil, model.NewConfigurationError("batch-size", "must be > 0, got %d", cfg.BatchSize)
	}
	if cfg.WindowLength <= 0 {
		return nil, model.NewConfigurationError("window-length", "must be > 0, got %d", cfg.WindowLength)
	}
	if c == nil || c.Vocabulary == nil {
		return nil, model.NewConfigurationError("corpus", "is nil")
	}
	if cfg.WindowLength >= len(c.Stream) {
		return nil, model.NewConfigurationError("window-length",
			"%d cannot exceed number of retained tokens (%d)", cfg.WindowLength, len(c.Stream))
	}
	it := &Iterator{
		stream: c.Stream,
		vocab:  c.Vocabulary,
		window: cfg.WindowLength,
		batch:  cfg.BatchSize,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	it.refill()
	it.epoch = 1
	return it, nil
}

// WindowCount is the number of windows per epoch. Two windows are held back:
// one so the final label has a token to shift into, one for the trailing
// partial window.
func (it *Iterator) WindowCount() int {
	return max((len(it.stream)-1)/it.window-2, 0)
}

// EpochSize is the number of batches per epoch.
func (it *Iterator) EpochSize() int {
	return (it.WindowCount() + it.batch - 1) / it.batch
}

// Reset regenerates and reshuffles the offsets for a new epoch, discarding
// anything left from the previous one.
func (it *Iterator) Reset() {
	it.refill()
	it.epoch++
}

func (it *Iterator) refill() {
	n := it.WindowCount()
	pending := make([]int, n)
	for i := range pending {
		pending[i] = i * it.window
	}
	it.rng.Shuffle(len(pending), func(i, j int) {
		pending[i], pending[j] = pending[j], pending[i]
	})
	it.pending = pending
}

func (it *Iterator) HasNext() bool {
	return len(it.pending) > 0
}

// Next pops up to BatchSize offsets from the front of the queue and encodes
// them. The last batch of an epoch may be smaller. On error the queue is
// left untouched.
func (it *Iterator) Next() (*Batch, error) {
	if len(it.pending) == 0 {
		return nil, model.ExhaustedError{Consumed: it.Cursor()}
	}
	n := min(it.batch, len(it.pending))
	offsets := make([]int, n)
	copy(offsets, it.pending[:n])

	v := it.vocab.Size()
	input, in := model.Zeros(n, v, it.window)
	labels, lab := model.Zeros(n, v, it.window)
	for i, start := range offsets {
		for c := range it.window {
			cur := it.stream[start+c]
			next := it.stream[start+c+1]
			for _, idx := range [2]int{cur, next} {
				if idx < 0 || idx >= v {
					return nil, model.LookupError{Index: idx, Size: v}
				}
			}
			in[(i*v+cur)*it.window+c] = 1
			lab[(i*v+next)*it.window+c] = 1
		}
	}
	it.pending = it.pending[n:]
	return &Batch{Input: input, Labels: labels, Offsets: offsets}, nil
}

// Cursor reports how many windows of the current epoch have been consumed.
func (it *Iterator) Cursor() int {
	return it.WindowCount() - len(it.pending)
}

// Remaining reports how many windows are still pending.
func (it *Iterator) Remaining() int {
	return len(it.pending)
}

// Epoch is the 1-based number of the epoch in progress.
func (it *Iterator) Epoch() int {
	return it.epoch
}

func (it *Iterator) BatchSize() int    { return it.batch }
func (it *Iterator) WindowLength() int { return it.window }

// Inputs is the width of the one-hot dimension.
func (it *Iterator) Inputs() int {
	return it.vocab.Size()
}

// Vocabulary returns the vocabulary used for encoding.
func (it *Iterator) Vocabulary() *vocab.Vocabulary {
	return it.vocab
}
