// Package toy provides a small trainable recurrent language model. It is
// deliberately simple: the hidden state is an exponentially decayed sum of
// token embeddings and a single projection maps it back to vocabulary
// probabilities.
package toy

import (
	"fmt"
	"math"

	gtensor "gorgonia.org/tensor"

	"github.com/samcharles93/wordrnn/internal/logits"
	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/tensor"
)

// Config sizes a ContextLM.
type Config struct {
	Vocab        int
	Hidden       int
	Decay        float32
	LearningRate float32
	Seed         int64
}

// DefaultHidden is used when Config.Hidden is zero.
const DefaultHidden = 64

// ContextLM implements model.Recurrent.
//
//	h_t = decay*h_{t-1} + (1-decay)*Emb[x_t]
//	p_t = softmax(W h_t + b)
type ContextLM struct {
	Vocab  int
	Hidden int
	Decay  float32
	Rate   float32

	Emb  tensor.Mat // [Vocab x Hidden]
	W    tensor.Mat // [Vocab x Hidden]
	Bias []float32  // [Vocab]

	// per-example generation state
	state [][]float32

	gEmb  tensor.Mat
	gW    tensor.Mat
	gBias []float32

	h, z, dh []float32
	scores   []float32
}

// New constructs a model with deterministic initial weights derived from
// cfg.Seed.
func New(cfg Config) (*ContextLM, error) {
	if cfg.Vocab <= 0 {
		return nil, model.NewConfigurationError("vocab", "must be > 0, got %d", cfg.Vocab)
	}
	if cfg.Hidden == 0 {
		cfg.Hidden = DefaultHidden
	}
	if cfg.Hidden < 0 {
		return nil, model.NewConfigurationError("hidden", "must be > 0, got %d", cfg.Hidden)
	}
	if cfg.Decay < 0 || cfg.Decay >= 1 {
		return nil, model.NewConfigurationError("decay", "must be in [0,1), got %v", cfg.Decay)
	}
	if cfg.LearningRate <= 0 {
		return nil, model.NewConfigurationError("learning_rate", "must be > 0, got %v", cfg.LearningRate)
	}

	v, h := cfg.Vocab, cfg.Hidden
	m := &ContextLM{
		Vocab:  v,
		Hidden: h,
		Decay:  cfg.Decay,
		Rate:   cfg.LearningRate,
		Emb:    tensor.NewMat(v, h),
		W:      tensor.NewMat(v, h),
		Bias:   make([]float32, v),
		gEmb:   tensor.NewMat(v, h),
		gW:     tensor.NewMat(v, h),
		gBias:  make([]float32, v),
		h:      make([]float32, h),
		z:      make([]float32, v),
		dh:     make([]float32, h),
		scores: make([]float32, v),
	}
	tensor.FillRand(&m.Emb, cfg.Seed+11, 1)
	tensor.FillRand(&m.W, cfg.Seed+23, 0.2)
	return m, nil
}

// NumParameters reports the size of Emb, W and Bias.
func (m *ContextLM) NumParameters() int {
	return m.Emb.Size() + m.W.Size() + len(m.Bias)
}

// ResetState forgets the generation state of every example.
func (m *ContextLM) ResetState() {
	m.state = nil
}

func (m *ContextLM) checkInput(t *gtensor.Dense) (n, steps int, data []float32, err error) {
	n, v, steps, err := model.Dims(t)
	if err != nil {
		return 0, 0, nil, err
	}
	if v != m.Vocab {
		return 0, 0, nil, fmt.Errorf("%w: vocabulary dimension %d, model has %d", model.ErrShape, v, m.Vocab)
	}
	data, err = model.Float32s(t)
	if err != nil {
		return 0, 0, nil, err
	}
	return n, steps, data, nil
}

// hot returns the index of the set entry at (example, step), or -1.
func (m *ContextLM) hot(data []float32, example, steps, step int) int {
	for j := range m.Vocab {
		if data[(example*m.Vocab+j)*steps+step] > 0 {
			return j
		}
	}
	return -1
}

func (m *ContextLM) advance(h []float32, x int) {
	tensor.Scale(h, m.Decay)
	if x >= 0 {
		tensor.Axpy(h, 1-m.Decay, m.Emb.Row(x))
	}
}

// probs writes softmax(W h + b) into m.z.
func (m *ContextLM) probs(h []float32) {
	tensor.MatVec(m.scores, &m.W, h)
	tensor.Add(m.scores, m.Bias)
	logits.Softmax(m.z, m.scores)
}

// Step advances each example's state through every time step of input.
// State persists across calls until ResetState, and is reinitialised when
// the number of examples changes.
func (m *ContextLM) Step(input *gtensor.Dense) (*gtensor.Dense, error) {
	n, steps, in, err := m.checkInput(input)
	if err != nil {
		return nil, err
	}
	if len(m.state) != n {
		m.state = make([][]float32, n)
		for i := range m.state {
			m.state[i] = make([]float32, m.Hidden)
		}
	}

	out, data := model.Zeros(n, m.Vocab, steps)
	for s := range n {
		h := m.state[s]
		for t := range steps {
			m.advance(h, m.hot(in, s, steps, t))
			m.probs(h)
			for k, p := range m.z {
				data[(s*m.Vocab+k)*steps+t] = p
			}
		}
	}
	return out, nil
}

// Train runs one SGD update over the minibatch and returns the mean
// cross-entropy of the predictions made before the update. Each example
// starts from a zero state; generation state is left untouched.
//
// The embedding gradient is truncated to the current time step.
func (m *ContextLM) Train(input, labels *gtensor.Dense) (float64, error) {
	n, steps, in, err := m.checkInput(input)
	if err != nil {
		return 0, err
	}
	ln, lsteps, lab, err := m.checkInput(labels)
	if err != nil {
		return 0, err
	}
	if ln != n || lsteps != steps {
		return 0, fmt.Errorf("%w: labels shape %v, input shape %v", model.ErrShape, labels.Shape(), input.Shape())
	}
	if n == 0 || steps == 0 {
		return 0, nil
	}

	m.gEmb.Zero()
	m.gW.Zero()
	clear(m.gBias)

	var loss float64
	count := 0
	for s := range n {
		clear(m.h)
		for t := range steps {
			x := m.hot(in, s, steps, t)
			m.advance(m.h, x)
			y := m.hot(lab, s, steps, t)
			if y < 0 {
				continue
			}
			m.probs(m.h)
			loss -= math.Log(math.Max(float64(m.z[y]), 1e-12))
			count++

			m.z[y]--
			tensor.AddOuter(&m.gW, 1, m.z, m.h)
			tensor.Add(m.gBias, m.z)
			if x >= 0 {
				tensor.MatTVec(m.dh, &m.W, m.z)
				tensor.Axpy(m.gEmb.Row(x), 1-m.Decay, m.dh)
			}
		}
	}
	if count == 0 {
		return 0, nil
	}

	step := -m.Rate / float32(count)
	tensor.Axpy(m.W.Data, step, m.gW.Data)
	tensor.Axpy(m.Emb.Data, step, m.gEmb.Data)
	tensor.Axpy(m.Bias, step, m.gBias)
	return loss / float64(count), nil
}

var _ model.Recurrent = (*ContextLM)(nil)
