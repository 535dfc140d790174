package model

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrExhausted     = errors.New("iterator exhausted")
	ErrDistribution  = errors.New("invalid distribution")
	ErrLookup        = errors.New("vocabulary lookup failed")
	ErrShape         = errors.New("tensor shape mismatch")
)

// ConfigurationError reports an invalid construction parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError formats the reason like fmt.Sprintf.
func NewConfigurationError(field, format string, args ...any) error {
	return ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ExhaustedError is returned when a batch is requested from an empty epoch.
type ExhaustedError struct {
	Consumed int
}

func (e ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d windows; call Reset to start a new epoch", ErrExhausted, e.Consumed)
}

func (e ExhaustedError) Unwrap() error {
	return ErrExhausted
}

// DistributionError carries the draw and the final cumulative sum of a
// distribution that never reached the draw.
type DistributionError struct {
	Draw float64
	Sum  float64
}

func (e DistributionError) Error() string {
	return fmt.Sprintf("%s: d=%v, sum=%v", ErrDistribution, e.Draw, e.Sum)
}

func (e DistributionError) Unwrap() error {
	return ErrDistribution
}

// LookupError identifies the token or index that is missing from a
// vocabulary. Index is -1 when the lookup was by token.
type LookupError struct {
	Token string
	Index int
	Size  int
}

func (e LookupError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: token %q not in vocabulary", ErrLookup, e.Token)
	}
	return fmt.Sprintf("%s: index %d out of range [0,%d)", ErrLookup, e.Index, e.Size)
}

func (e LookupError) Unwrap() error {
	return ErrLookup
}
