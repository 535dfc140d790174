// Package vocab builds a frequency-filtered token vocabulary and the
// flattened token stream used for training.
package vocab

import (
	"io"
	"math/rand"

	"github.com/goccy/go-json"

	"github.com/samcharles93/wordrnn/internal/model"
)

// Vocabulary is an immutable bijection between tokens and the indices
// [0, Size()). Indices follow the order in which tokens first qualified.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// New builds a vocabulary from an ordered, duplicate-free token list.
func New(tokens []string) (*Vocabulary, error) {
	v := &Vocabulary{
		tokens: make([]string, len(tokens)),
		index:  make(map[string]int, len(tokens)),
	}
	copy(v.tokens, tokens)
	for i, tok := range v.tokens {
		if _, dup := v.index[tok]; dup {
			return nil, model.NewConfigurationError("tokens", "duplicate token %q at index %d", tok, i)
		}
		v.index[tok] = i
	}
	return v, nil
}

// Size returns the number of tokens.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Index returns the index assigned to token.
func (v *Vocabulary) Index(token string) (int, error) {
	idx, ok := v.index[token]
	if !ok {
		return 0, model.LookupError{Token: token, Index: -1, Size: len(v.tokens)}
	}
	return idx, nil
}

// Token returns the token at idx.
func (v *Vocabulary) Token(idx int) (string, error) {
	if idx < 0 || idx >= len(v.tokens) {
		return "", model.LookupError{Index: idx, Size: len(v.tokens)}
	}
	return v.tokens[idx], nil
}

func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.index[token]
	return ok
}

// Tokens returns a copy of the tokens in index order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// RandomToken picks a token uniformly at random.
func (v *Vocabulary) RandomToken(rng *rand.Rand) (string, error) {
	if len(v.tokens) == 0 {
		return "", model.LookupError{Index: 0, Size: 0}
	}
	return v.tokens[rng.Intn(len(v.tokens))], nil
}

// Snapshot is the serialized form of a vocabulary.
type Snapshot struct {
	Size   int      `json:"size"`
	Tokens []string `json:"tokens"`
}

func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(Snapshot{Size: len(v.tokens), Tokens: v.tokens})
}

// WriteSnapshot writes the vocabulary as indented JSON.
func (v *Vocabulary) WriteSnapshot(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Snapshot{Size: len(v.tokens), Tokens: v.tokens})
}

// ReadSnapshot decodes a vocabulary written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Vocabulary, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Size != len(snap.Tokens) {
		return nil, model.NewConfigurationError("size", "snapshot declares %d tokens but lists %d", snap.Size, len(snap.Tokens))
	}
	return New(snap.Tokens)
}
