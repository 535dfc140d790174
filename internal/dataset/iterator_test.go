package dataset

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"gorgonia.org/tensor"

	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/vocab"
)

// cyclicCorpus returns a stream of length n cycling through a vocabulary of
// size v, so every position is distinguishable modulo v.
func cyclicCorpus(t *testing.T, n, v int) *vocab.Corpus {
	t.Helper()
	tokens := make([]string, v)
	for i := range tokens {
		tokens[i] = string(rune('a' + i))
	}
	voc, err := vocab.New(tokens)
	if err != nil {
		t.Fatalf("vocab.New: %v", err)
	}
	stream := make([]int, n)
	for i := range stream {
		stream[i] = (i*7 + i/3) % v
	}
	return &vocab.Corpus{Vocabulary: voc, Stream: stream}
}

func newIterator(t *testing.T, c *vocab.Corpus, cfg Config) *Iterator {
	t.Helper()
	it, err := NewIterator(c, cfg)
	if err != nil {
		t.Fatalf("NewIterator returned error: %v", err)
	}
	return it
}

func at(t *testing.T, d *tensor.Dense, coords ...int) float32 {
	t.Helper()
	v, err := d.At(coords...)
	if err != nil {
		t.Fatalf("At(%v): %v", coords, err)
	}
	return v.(float32)
}

func TestNewIteratorConfigurationErrors(t *testing.T) {
	t.Parallel()

	c := cyclicCorpus(t, 20, 4)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero batch", Config{WindowLength: 2, BatchSize: 0}},
		{"negative batch", Config{WindowLength: 2, BatchSize: -3}},
		{"zero window", Config{WindowLength: 0, BatchSize: 1}},
		{"window equals stream", Config{WindowLength: 20, BatchSize: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it, err := NewIterator(c, tc.cfg)
			if !errors.Is(err, model.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if it != nil {
				t.Fatal("expected no iterator on configuration error")
			}
		})
	}
}

func TestMinimumCorpusHasNoWindows(t *testing.T) {
	t.Parallel()

	// (6-1)/2 - 2 == 0
	it := newIterator(t, cyclicCorpus(t, 6, 3), Config{WindowLength: 2, BatchSize: 1})
	if it.WindowCount() != 0 {
		t.Fatalf("WindowCount: got %d want 0", it.WindowCount())
	}
	if it.HasNext() {
		t.Fatal("expected HasNext() == false")
	}
	if it.EpochSize() != 0 {
		t.Fatalf("EpochSize: got %d want 0", it.EpochSize())
	}
	if _, err := it.Next(); !errors.Is(err, model.ErrExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
}

func TestShortStreamNeverGoesNegative(t *testing.T) {
	t.Parallel()

	// (4-1)/3 - 2 < 0
	it := newIterator(t, cyclicCorpus(t, 4, 2), Config{WindowLength: 3, BatchSize: 4})
	if it.WindowCount() != 0 || it.HasNext() {
		t.Fatalf("expected empty epoch, got WindowCount=%d", it.WindowCount())
	}
	it.Reset()
	if it.HasNext() {
		t.Fatal("expected empty epoch after Reset")
	}
}

func TestPartialFinalBatch(t *testing.T) {
	t.Parallel()

	// (15-1)/2 - 2 == 5 windows.
	it := newIterator(t, cyclicCorpus(t, 15, 4), Config{WindowLength: 2, BatchSize: 2, Seed: 1})
	if it.WindowCount() != 5 {
		t.Fatalf("WindowCount: got %d want 5", it.WindowCount())
	}
	if it.EpochSize() != 3 {
		t.Fatalf("EpochSize: got %d want 3", it.EpochSize())
	}

	for i, want := range []int{2, 2, 1} {
		if !it.HasNext() {
			t.Fatalf("batch %d: HasNext() == false", i)
		}
		b, err := it.Next()
		if err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
		if b.Examples() != want {
			t.Fatalf("batch %d: got %d examples want %d", i, b.Examples(), want)
		}
		if got := b.Input.Shape(); !reflect.DeepEqual([]int(got), []int{want, 4, 2}) {
			t.Fatalf("batch %d: input shape %v", i, got)
		}
	}
	if it.HasNext() {
		t.Fatal("expected exhausted epoch")
	}
	_, err := it.Next()
	var exhausted model.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Consumed != 5 {
		t.Fatalf("ExhaustedError.Consumed: got %d want 5", exhausted.Consumed)
	}
}

func drain(t *testing.T, it *Iterator) []int {
	t.Helper()
	var offsets []int
	for it.HasNext() {
		b, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		offsets = append(offsets, b.Offsets...)
	}
	return offsets
}

func TestEpochCoverage(t *testing.T) {
	t.Parallel()

	const window = 5
	it := newIterator(t, cyclicCorpus(t, 203, 6), Config{WindowLength: window, BatchSize: 3, Seed: 42})
	n := it.WindowCount()
	if n != (203-1)/window-2 {
		t.Fatalf("WindowCount: got %d", n)
	}

	for epoch := 1; epoch <= 3; epoch++ {
		if it.Epoch() != epoch {
			t.Fatalf("Epoch: got %d want %d", it.Epoch(), epoch)
		}
		got := drain(t, it)
		sort.Ints(got)
		if len(got) != n {
			t.Fatalf("epoch %d: got %d offsets want %d", epoch, len(got), n)
		}
		for i, off := range got {
			if off != i*window {
				t.Fatalf("epoch %d: offset %d is %d want %d", epoch, i, off, i*window)
			}
		}
		if it.Cursor() != n {
			t.Fatalf("Cursor: got %d want %d", it.Cursor(), n)
		}
		it.Reset()
	}
}

func TestResetDiscardsLeftovers(t *testing.T) {
	t.Parallel()

	it := newIterator(t, cyclicCorpus(t, 101, 5), Config{WindowLength: 4, BatchSize: 4, Seed: 7})
	n := it.WindowCount()
	if _, err := it.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	it.Reset()
	if it.Remaining() != n {
		t.Fatalf("Remaining after Reset: got %d want %d", it.Remaining(), n)
	}
	if got := len(drain(t, it)); got != n {
		t.Fatalf("offsets after Reset: got %d want %d", got, n)
	}
}

func TestShuffleIsDeterministic(t *testing.T) {
	t.Parallel()

	c := cyclicCorpus(t, 301, 7)
	cfg := Config{WindowLength: 3, BatchSize: 8, Seed: 12345}

	a := newIterator(t, c, cfg)
	b := newIterator(t, c, cfg)
	for epoch := range 2 {
		for a.HasNext() {
			ba, err := a.Next()
			if err != nil {
				t.Fatalf("a.Next: %v", err)
			}
			bb, err := b.Next()
			if err != nil {
				t.Fatalf("b.Next: %v", err)
			}
			if !reflect.DeepEqual(ba.Offsets, bb.Offsets) {
				t.Fatalf("epoch %d: offsets differ %v vs %v", epoch, ba.Offsets, bb.Offsets)
			}
			if !ba.Input.Eq(bb.Input) || !ba.Labels.Eq(bb.Labels) {
				t.Fatalf("epoch %d: tensors differ", epoch)
			}
		}
		if b.HasNext() {
			t.Fatalf("epoch %d: second iterator has leftovers", epoch)
		}
		a.Reset()
		b.Reset()
	}

	other := newIterator(t, c, Config{WindowLength: 3, BatchSize: 8, Seed: 54321})
	if reflect.DeepEqual(drain(t, newIterator(t, c, cfg)), drain(t, other)) {
		t.Fatal("different seeds produced the same order")
	}
}

func TestOneHotEncoding(t *testing.T) {
	t.Parallel()

	const (
		window = 4
		v      = 5
	)
	c := cyclicCorpus(t, 64, v)
	it := newIterator(t, c, Config{WindowLength: window, BatchSize: 4, Seed: 3})

	for it.HasNext() {
		b, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		for i, start := range b.Offsets {
			for step := range window {
				var inSum, labSum float32
				for j := range v {
					in := at(t, b.Input, i, j, step)
					lab := at(t, b.Labels, i, j, step)
					if (in != 0 && in != 1) || (lab != 0 && lab != 1) {
						t.Fatalf("non binary entry at (%d,%d,%d)", i, j, step)
					}
					inSum += in
					labSum += lab
				}
				if inSum != 1 || labSum != 1 {
					t.Fatalf("example %d step %d: input sum %v label sum %v", i, step, inSum, labSum)
				}
				if at(t, b.Input, i, c.Stream[start+step], step) != 1 {
					t.Fatalf("example %d step %d: wrong input token", i, step)
				}
				if at(t, b.Labels, i, c.Stream[start+step+1], step) != 1 {
					t.Fatalf("example %d step %d: wrong label token", i, step)
				}
			}
		}
	}
}

func TestLabelsAreShiftedInputs(t *testing.T) {
	t.Parallel()

	const (
		window = 6
		v      = 4
	)
	it := newIterator(t, cyclicCorpus(t, 80, v), Config{WindowLength: window, BatchSize: 5, Seed: 11})
	b, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	for i := range b.Examples() {
		for step := 0; step < window-1; step++ {
			for j := range v {
				if at(t, b.Labels, i, j, step) != at(t, b.Input, i, j, step+1) {
					t.Fatalf("example %d: label[%d] != input[%d] at token %d", i, step, step+1, j)
				}
			}
		}
	}
}

func TestNextRejectsInconsistentStream(t *testing.T) {
	t.Parallel()

	c := cyclicCorpus(t, 40, 3)
	c.Stream[1] = 99
	it := newIterator(t, c, Config{WindowLength: 2, BatchSize: 100})
	before := it.Remaining()
	if _, err := it.Next(); !errors.Is(err, model.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if !it.HasNext() || it.Remaining() != before || it.Cursor() != 0 {
		t.Fatalf("failed batch consumed windows: remaining got %d want %d cursor %d", it.Remaining(), before, it.Cursor())
	}
	if _, err := it.Next(); !errors.Is(err, model.ErrLookup) {
		t.Fatalf("retry: expected lookup error, got %v", err)
	}
}
