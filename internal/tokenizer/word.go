package tokenizer

import (
	"strings"
	"unicode"
)

type runeClass uint8

const (
	classSpace runeClass = iota
	classPunct
	classHan
	classHiragana
	classKatakana
	classWord
)

// WordTokenizer segments text into word-like tokens. Whitespace separates
// tokens, punctuation and symbols become single-rune tokens, and letter runs
// are split wherever the script changes (Han, Hiragana, Katakana, other).
// For Japanese text it is a dictionary-free fallback to JapaneseTokenizer.
type WordTokenizer struct {
	opts Options
}

// NewWordTokenizer returns a word tokenizer with the given options.
func NewWordTokenizer(opts Options) *WordTokenizer {
	return &WordTokenizer{opts: opts}
}

func (t *WordTokenizer) Tokenize(text string) []string {
	out := make([]string, 0, len(text)/4)
	var (
		cur  strings.Builder
		prev = classSpace
	)
	flush := func() {
		if cur.Len() > 0 {
			out = t.opts.emit(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		cls := classify(r, prev)
		switch cls {
		case classSpace:
			flush()
		case classPunct:
			flush()
			if !t.opts.DropPunct {
				out = t.opts.emit(out, string(r))
			}
		default:
			if cls != prev {
				flush()
			}
			cur.WriteRune(r)
		}
		prev = cls
	}
	flush()
	return out
}

// classify assigns r to a class. Combining marks and the katakana prolonged
// sound mark continue the preceding run.
func classify(r rune, prev runeClass) runeClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.Is(unicode.Mn, r) || r == 'ー':
		if prev >= classHan {
			return prev
		}
		return classWord
	case unicode.Is(unicode.Han, r):
		return classHan
	case unicode.Is(unicode.Hiragana, r):
		return classHiragana
	case unicode.Is(unicode.Katakana, r):
		return classKatakana
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	default:
		return classPunct
	}
}
