package tokenizer

import "unicode"

// CharTokenizer emits one token per rune. Runs of whitespace collapse to a
// single space token.
type CharTokenizer struct {
	opts Options
}

// NewCharTokenizer returns a character tokenizer with the given options.
func NewCharTokenizer(opts Options) *CharTokenizer {
	return &CharTokenizer{opts: opts}
}

func (t *CharTokenizer) Tokenize(text string) []string {
	out := make([]string, 0, len(text))
	inSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !inSpace {
				out = t.opts.emit(out, " ")
			}
			inSpace = true
			continue
		}
		inSpace = false
		out = t.opts.emit(out, string(r))
	}
	return out
}
