// Package follow implements a spring-damper follower: a point that chases a
// moving target with configurable frequency, damping and response, advanced
// with a stabilised Euler step. It has no dependencies on donburi, necs or
// any host; callers feed it the target state once per tick.
package follow

import (
	"errors"
	"fmt"
	"math"
)

// Default tuning values, used when a follow relationship is created without
// explicit parameters.
const (
	DefaultFrequency float32 = 1.0
	DefaultDamping   float32 = 0.5
	DefaultResponse  float32 = 2.0
)

var (
	ErrInvalidTuning = errors.New("invalid tuning")
	ErrNegativeDelta = errors.New("negative delta time")
)

// Tuning holds the human-facing spring parameters.
type Tuning struct {
	Frequency float32 `json:"frequency" yaml:"frequency"` // natural frequency in Hz, > 0
	Damping   float32 `json:"damping" yaml:"damping"`     // damping ratio, >= 0
	Response  float32 `json:"response" yaml:"response"`   // initial response; < 0 anticipates
}

func DefaultTuning() Tuning {
	return Tuning{
		Frequency: DefaultFrequency,
		Damping:   DefaultDamping,
		Response:  DefaultResponse,
	}
}

// Validate reports whether t can be turned into finite spring constants.
func (t Tuning) Validate() error {
	if !finite(t.Frequency) || !finite(t.Damping) || !finite(t.Response) {
		return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidTuning, t)
	}
	if !(t.Frequency > 0) {
		return fmt.Errorf("%w: frequency must be > 0, got %g", ErrInvalidTuning, t.Frequency)
	}
	if t.Damping < 0 {
		return fmt.Errorf("%w: damping must be >= 0, got %g", ErrInvalidTuning, t.Damping)
	}
	// Subnormal frequencies and huge products overflow float32 in Derive.
	k := Derive(t)
	if !finite(k.K1) || !finite(k.K2) || !finite(k.K3) || !(k.K2 > 0) {
		return fmt.Errorf("%w: constants overflow for %+v: %+v", ErrInvalidTuning, t, k)
	}
	return nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
