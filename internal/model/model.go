package model

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Recurrent is a sequence model with resettable internal state.
//
// Tensors passed in and returned are float32 and laid out as
// (examples, vocabulary, timeSteps). Step advances the internal state by
// every time step in input and returns one probability distribution per
// example and time step.
type Recurrent interface {
	// ResetState clears the recurrent state carried between Step calls.
	ResetState()
	// Step runs a forward pass over input and returns output probabilities.
	Step(input *tensor.Dense) (*tensor.Dense, error)
	// Train fits one minibatch and returns the mean cross-entropy loss.
	Train(input, labels *tensor.Dense) (float64, error)
	// NumParameters reports the number of trainable parameters.
	NumParameters() int
}

// Dims returns the (examples, vocabulary, timeSteps) dimensions of t.
func Dims(t *tensor.Dense) (n, v, steps int, err error) {
	if t == nil {
		return 0, 0, 0, fmt.Errorf("%w: nil tensor", ErrShape)
	}
	shape := t.Shape()
	if len(shape) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: expected rank 3, got shape %v", ErrShape, shape)
	}
	return shape[0], shape[1], shape[2], nil
}

// Float32s returns the backing slice of a float32 tensor.
func Float32s(t *tensor.Dense) ([]float32, error) {
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: expected float32 data, got %T", ErrShape, t.Data())
	}
	return data, nil
}

// LastStep extracts the distribution for one example at the final time step
// of a model output.
func LastStep(out *tensor.Dense, example int) ([]float64, error) {
	n, v, steps, err := Dims(out)
	if err != nil {
		return nil, err
	}
	if example < 0 || example >= n {
		return nil, fmt.Errorf("%w: example %d out of range [0,%d)", ErrShape, example, n)
	}
	if steps == 0 {
		return nil, fmt.Errorf("%w: output has no time steps", ErrShape)
	}
	data, err := Float32s(out)
	if err != nil {
		return nil, err
	}
	dist := make([]float64, v)
	last := steps - 1
	for j := range v {
		dist[j] = float64(data[(example*v+j)*steps+last])
	}
	return dist, nil
}

// Zeros allocates a zeroed (n, v, steps) float32 tensor and returns it
// together with its backing slice.
func Zeros(n, v, steps int) (*tensor.Dense, []float32) {
	data := make([]float32, n*v*steps)
	return tensor.New(tensor.WithShape(n, v, steps), tensor.WithBacking(data)), data
}
