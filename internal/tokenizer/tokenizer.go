package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTokenRunes is the longest token kept by the built-in tokenizers.
// Longer surface forms are almost always URLs or encoding debris.
const MaxTokenRunes = 30

// Tokenizer splits document text into an ordered sequence of tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// PreProcessor rewrites a single token. Returning "" drops the token.
type PreProcessor interface {
	PreProcess(token string) string
}

// PreProcessFunc adapts a plain function to PreProcessor.
type PreProcessFunc func(token string) string

func (f PreProcessFunc) PreProcess(token string) string {
	return f(token)
}

// Options configures the built-in tokenizers.
type Options struct {
	PreProcessor PreProcessor
	// DropPunct removes punctuation and symbol tokens from word output.
	DropPunct bool
	// OnLongToken is called for every token dropped for exceeding MaxTokenRunes.
	OnLongToken func(token string)
}

// New returns the tokenizer registered under kind: "ja" (morphological,
// the default), "word" (script-change splitting) or "char".
func New(kind string, opts Options) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "ja", "japanese", "kagome":
		return NewJapaneseTokenizer(opts)
	case "word":
		return NewWordTokenizer(opts), nil
	case "char", "character":
		return NewCharTokenizer(opts), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q (want ja, word or char)", kind)
	}
}

// emit applies the pre-processor and length limit, appending the surviving
// token to out.
func (o Options) emit(out []string, token string) []string {
	if token == "" {
		return out
	}
	if utf8.RuneCountInString(token) > MaxTokenRunes {
		if o.OnLongToken != nil {
			o.OnLongToken(token)
		}
		return out
	}
	if o.PreProcessor != nil {
		token = o.PreProcessor.PreProcess(token)
		if token == "" {
			return out
		}
	}
	return append(out, token)
}
