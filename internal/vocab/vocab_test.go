package vocab

import (
	"bytes"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/samcharles93/wordrnn/internal/corpus"
	"github.com/samcharles93/wordrnn/internal/logger"
	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/tokenizer"
)

// spaceTokenizer splits on single spaces so tests control tokens exactly.
type spaceTokenizer struct{}

func (spaceTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

func docs(contents ...string) []corpus.Document {
	out := make([]corpus.Document, len(contents))
	for i, c := range contents {
		out[i] = corpus.Document{ID: string(rune('a' + i)), Content: c}
	}
	return out
}

func build(t *testing.T, d []corpus.Document, minFreq, window int) *Corpus {
	t.Helper()
	c, err := Build(d, spaceTokenizer{}, BuildOptions{MinFrequency: minFreq, WindowLength: window, Log: logger.Discard()})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	return c
}

func TestBuildThreeDocumentScenario(t *testing.T) {
	t.Parallel()

	c := build(t, docs("a a a", "b b", "a c"), 1, 2)

	if got, want := c.Vocabulary.Tokens(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("vocabulary: got %q want %q", got, want)
	}
	if got, want := c.Tokens(), []string{"a", "a", "a", "b", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("stream: got %q want %q", got, want)
	}
	if c.Len() != 6 {
		t.Fatalf("stream length: got %d want 6", c.Len())
	}
	want := Stats{Documents: 3, Total: 7, Retained: 6, Removed: 1}
	if c.Stats != want {
		t.Fatalf("stats: got %+v want %+v", c.Stats, want)
	}
}

func TestBuildAssignsIndicesWhenThresholdIsCrossed(t *testing.T) {
	t.Parallel()

	// "x" appears first but crosses the threshold (count > 1) after "y".
	c := build(t, docs("x y y x z z z"), 1, 1)
	if got, want := c.Vocabulary.Tokens(), []string{"y", "x", "z"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("index order: got %q want %q", got, want)
	}
}

func TestBuildFrequencyThreshold(t *testing.T) {
	t.Parallel()

	text := "p q r p q p s s s s t"
	counts := map[string]int{}
	for _, tok := range strings.Split(text, " ") {
		counts[tok]++
	}

	for _, minFreq := range []int{0, 1, 2, 3} {
		c := build(t, docs(text), minFreq, 1)
		for tok, n := range counts {
			if got := c.Vocabulary.Contains(tok); got != (n > minFreq) {
				t.Errorf("minFreq=%d token %q count %d: in vocabulary=%v", minFreq, tok, n, got)
			}
		}
		for _, tok := range c.Tokens() {
			if counts[tok] <= minFreq {
				t.Errorf("minFreq=%d: stream contains %q with count %d", minFreq, tok, counts[tok])
			}
		}
	}
}

func TestBuildBijection(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	words := []string{"の", "は", "猫", "犬", "走る", "見る", "青い", "空"}
	var sb strings.Builder
	for i := range 500 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(words[rng.Intn(len(words))])
	}

	c := build(t, docs(sb.String()), 20, 10)
	v := c.Vocabulary
	seen := make(map[string]bool)
	for i := range v.Size() {
		tok, err := v.Token(i)
		if err != nil {
			t.Fatalf("Token(%d): %v", i, err)
		}
		if seen[tok] {
			t.Fatalf("token %q assigned twice", tok)
		}
		seen[tok] = true
		idx, err := v.Index(tok)
		if err != nil || idx != i {
			t.Fatalf("Index(%q): got %d, %v want %d", tok, idx, err, i)
		}
	}
	for _, idx := range c.Stream {
		if idx < 0 || idx >= v.Size() {
			t.Fatalf("stream index %d out of range", idx)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		docs    []corpus.Document
		minFreq int
		window  int
	}{
		{"window equals stream", docs("a a a"), 0, 3},
		{"window exceeds stream", docs("a a a"), 0, 10},
		{"threshold removes everything", docs("a b c"), 1, 1},
		{"negative frequency", docs("a a"), -1, 1},
		{"zero window", docs("a a"), 0, 0},
		{"no documents", nil, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.docs, spaceTokenizer{}, BuildOptions{MinFrequency: tc.minFreq, WindowLength: tc.window, Log: logger.Discard()})
			if !errors.Is(err, model.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			var cfgErr model.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %T", err)
			}
		})
	}
}

func TestBuildWithWordTokenizer(t *testing.T) {
	t.Parallel()

	tok := tokenizer.NewWordTokenizer(tokenizer.Options{DropPunct: true})
	c, err := Build(docs("猫が好き。", "猫が走る。"), tok, BuildOptions{MinFrequency: 1, WindowLength: 1, Log: logger.Discard()})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got, want := c.Tokens(), []string{"猫", "が", "猫", "が"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("stream: got %q want %q", got, want)
	}
}

func TestVocabularyLookupErrors(t *testing.T) {
	t.Parallel()

	v, err := New([]string{"a", "b"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := v.Index("zzz"); !errors.Is(err, model.ErrLookup) {
		t.Fatalf("Index(missing): expected lookup error, got %v", err)
	}
	for _, idx := range []int{-1, 2, 100} {
		if _, err := v.Token(idx); !errors.Is(err, model.ErrLookup) {
			t.Fatalf("Token(%d): expected lookup error, got %v", idx, err)
		}
	}

	empty, _ := New(nil)
	if _, err := empty.RandomToken(rand.New(rand.NewSource(1))); !errors.Is(err, model.ErrLookup) {
		t.Fatalf("RandomToken on empty vocabulary: got %v", err)
	}

	if _, err := New([]string{"a", "a"}); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("New with duplicate: got %v", err)
	}
}

func TestVocabularyIsImmutable(t *testing.T) {
	t.Parallel()

	src := []string{"a", "b"}
	v, _ := New(src)
	src[0] = "changed"
	out := v.Tokens()
	out[1] = "changed"

	if got, _ := v.Token(0); got != "a" {
		t.Fatalf("source mutation leaked: %q", got)
	}
	if got, _ := v.Token(1); got != "b" {
		t.Fatalf("Tokens() mutation leaked: %q", got)
	}
}

func TestRandomTokenDeterministic(t *testing.T) {
	t.Parallel()

	v, _ := New([]string{"a", "b", "c", "d"})
	r1 := rand.New(rand.NewSource(9))
	r2 := rand.New(rand.NewSource(9))
	for range 20 {
		a, _ := v.RandomToken(r1)
		b, _ := v.RandomToken(r2)
		if a != b {
			t.Fatalf("expected deterministic draws, got %q vs %q", a, b)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	v, _ := New([]string{"東京", "へ", "a"})
	var buf bytes.Buffer
	if err := v.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if !strings.Contains(buf.String(), `"size": 3`) {
		t.Fatalf("expected indented size field, got %s", buf.String())
	}

	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got.Tokens(), v.Tokens()) {
		t.Fatalf("round trip: got %q want %q", got.Tokens(), v.Tokens())
	}

	if _, err := ReadSnapshot(strings.NewReader(`{"size":2,"tokens":["a"]}`)); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected size mismatch error, got %v", err)
	}
}
