// Package generate samples text from a trained recurrent model by feeding
// each sampled token back in as the next input.
package generate

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/samcharles93/wordrnn/internal/logits"
	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/vocab"
)

// DefaultSeparator follows the seed token in every generated sample.
const DefaultSeparator = ":\n"

// Options tunes a Generate call.
type Options struct {
	// Samples is the number of continuations generated in lockstep.
	Samples int
	// Steps is the number of tokens sampled after the seed.
	Steps int
	// Prime fixes the seed token instead of drawing one at random.
	Prime string
	// Temperature reshapes the output distribution; 0 or 1 leaves it as is.
	Temperature float64
}

// Sample is one generated continuation.
type Sample struct {
	Seed   string
	Tokens []string
	Text   string
}

// Generator owns the model state for the duration of a Generate call.
// It is not safe for concurrent use.
type Generator struct {
	Model      model.Recurrent
	Vocabulary *vocab.Vocabulary
	Rand       *rand.Rand
	// Separator is written between the seed token and the sampled tokens.
	Separator string
	// Joiner is written between sampled tokens.
	Joiner string
}

// New returns a Generator with the default separator and no joiner.
func New(m model.Recurrent, v *vocab.Vocabulary, rng *rand.Rand) *Generator {
	return &Generator{
		Model:      m,
		Vocabulary: v,
		Rand:       rng,
		Separator:  DefaultSeparator,
	}
}

// Generate resets the model, feeds one seed token to every sample and then
// advances all samples together, one sampled token per step.
func (g *Generator) Generate(ctx context.Context, opts Options) ([]Sample, error) {
	if opts.Samples <= 0 {
		return nil, model.NewConfigurationError("samples", "must be > 0, got %d", opts.Samples)
	}
	if opts.Steps < 0 {
		return nil, model.NewConfigurationError("steps", "must be >= 0, got %d", opts.Steps)
	}

	seed := opts.Prime
	if seed == "" {
		tok, err := g.Vocabulary.RandomToken(g.Rand)
		if err != nil {
			return nil, err
		}
		seed = tok
	}
	seedIdx, err := g.Vocabulary.Index(seed)
	if err != nil {
		return nil, err
	}

	n, v := opts.Samples, g.Vocabulary.Size()
	input, data := model.Zeros(n, v, 1)
	for s := range n {
		data[s*v+seedIdx] = 1
	}

	g.Model.ResetState()
	out, err := g.Model.Step(input)
	if err != nil {
		return nil, fmt.Errorf("generate: seed step: %w", err)
	}

	sampler := logits.NewSampler(g.Rand, opts.Temperature)
	tokens := make([][]string, n)
	for s := range tokens {
		tokens[s] = make([]string, 0, opts.Steps)
	}
	for step := range opts.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, nextData := model.Zeros(n, v, 1)
		for s := range n {
			dist, err := model.LastStep(out, s)
			if err != nil {
				return nil, fmt.Errorf("generate: step %d: %w", step, err)
			}
			idx, err := sampler.Sample(dist)
			if err != nil {
				return nil, fmt.Errorf("generate: step %d sample %d: %w", step, s, err)
			}
			tok, err := g.Vocabulary.Token(idx)
			if err != nil {
				return nil, err
			}
			nextData[s*v+idx] = 1
			tokens[s] = append(tokens[s], tok)
		}
		out, err = g.Model.Step(next)
		if err != nil {
			return nil, fmt.Errorf("generate: step %d: %w", step, err)
		}
	}

	samples := make([]Sample, n)
	for s := range samples {
		samples[s] = Sample{
			Seed:   seed,
			Tokens: tokens[s],
			Text:   seed + g.Separator + strings.Join(tokens[s], g.Joiner),
		}
	}
	return samples, nil
}

// Texts runs Generate with a random seed token and returns only the text of
// each sample.
func Texts(ctx context.Context, m model.Recurrent, v *vocab.Vocabulary, rng *rand.Rand, samples, steps int) ([]string, error) {
	out, err := New(m, v, rng).Generate(ctx, Options{Samples: samples, Steps: steps})
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(out))
	for i, s := range out {
		texts[i] = s.Text
	}
	return texts, nil
}
