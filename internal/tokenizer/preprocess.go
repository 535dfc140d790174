package tokenizer

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var doubleSpace = regexp.MustCompile(`[\s\n]{2}`)

// CollapseWhitespace removes every pair of adjacent whitespace runes.
var CollapseWhitespace PreProcessor = PreProcessFunc(func(token string) string {
	return doubleSpace.ReplaceAllString(token, "")
})

// NFKC folds compatibility forms (full-width Latin, half-width katakana).
var NFKC PreProcessor = PreProcessFunc(func(token string) string {
	return norm.NFKC.String(token)
})

// Lower lower-cases the token.
var Lower PreProcessor = PreProcessFunc(strings.ToLower)

// Chain runs pre-processors in order and stops at the first empty result.
func Chain(pp ...PreProcessor) PreProcessor {
	return PreProcessFunc(func(token string) string {
		for _, p := range pp {
			if p == nil {
				continue
			}
			token = p.PreProcess(token)
			if token == "" {
				return ""
			}
		}
		return token
	})
}

// ParsePreProcessors builds a chain from names such as "nfkc,lower".
func ParsePreProcessors(names string) (PreProcessor, error) {
	var chain []PreProcessor
	for name := range strings.SplitSeq(names, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "":
		case "nfkc":
			chain = append(chain, NFKC)
		case "lower":
			chain = append(chain, Lower)
		case "collapse-space":
			chain = append(chain, CollapseWhitespace)
		default:
			return nil, fmt.Errorf("unknown pre-processor %q (want nfkc, lower, collapse-space)", name)
		}
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return Chain(chain...), nil
}
