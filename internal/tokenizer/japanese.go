package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"
)

// posSymbol is the IPA part-of-speech class for punctuation and symbols.
const posSymbol = "記号"

var ipaTokenizer = sync.OnceValues(func() (*kagome.Tokenizer, error) {
	return kagome.New(ipa.Dict(), kagome.OmitBosEos())
})

// JapaneseTokenizer segments text with a morphological analyser over the
// IPA dictionary and emits each token's surface form.
type JapaneseTokenizer struct {
	opts Options
	t    *kagome.Tokenizer
}

// NewJapaneseTokenizer loads the IPA dictionary on first use; later calls
// share it.
func NewJapaneseTokenizer(opts Options) (*JapaneseTokenizer, error) {
	t, err := ipaTokenizer()
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load ipa dictionary: %w", err)
	}
	return &JapaneseTokenizer{opts: opts, t: t}, nil
}

func (t *JapaneseTokenizer) Tokenize(text string) []string {
	tokens := t.t.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		if t.opts.DropPunct {
			if pos := tok.POS(); len(pos) > 0 && pos[0] == posSymbol {
				continue
			}
		}
		out = t.opts.emit(out, tok.Surface)
	}
	return out
}
