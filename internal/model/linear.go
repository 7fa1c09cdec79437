// Package model defines parameter configuration for the linear
// negative-feedback gene expression model. The stochastic kinetics are
// owned by the external simulation engine; this package only validates
// and carries the parameters that cross that boundary.
package model

import (
	"fmt"
	"math"
)

// NumMechanisms is the number of distinct repression mechanisms:
// transcription, transcript stability, and protein stability.
const NumMechanisms = 3

// Conditions is the fixed ordering of biosynthesis conditions reported
// by the simulation engine.
var Conditions = []string{"normal", "diabetic", "minute", "carbon_limited"}

// FeedbackVector holds one repression strength per mechanism, indexed
// transcription (0), transcript stability (1), protein stability (2).
type FeedbackVector [NumMechanisms]float64

// NewFeedbackVector builds a FeedbackVector from a slice, rejecting
// malformed input at construction time.
func NewFeedbackVector(strengths []float64) (FeedbackVector, error) {
	var v FeedbackVector
	if len(strengths) != NumMechanisms {
		return v, fmt.Errorf("feedback vector must have %d entries, got %d", NumMechanisms, len(strengths))
	}
	copy(v[:], strengths)
	if err := v.Validate(); err != nil {
		return FeedbackVector{}, err
	}
	return v, nil
}

// Singleton returns a vector with only the given mechanism active.
func Singleton(mechanism int, strength float64) (FeedbackVector, error) {
	var v FeedbackVector
	if mechanism < 0 || mechanism >= NumMechanisms {
		return v, fmt.Errorf("mechanism index out of range: %d", mechanism)
	}
	v[mechanism] = strength
	if err := v.Validate(); err != nil {
		return FeedbackVector{}, err
	}
	return v, nil
}

// Validate rejects negative or non-finite strengths.
func (v FeedbackVector) Validate() error {
	for i, s := range v {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("feedback strength %d is not finite", i)
		}
		if s < 0 {
			return fmt.Errorf("feedback strength %d is negative: %g", i, s)
		}
	}
	return nil
}

// ActiveMechanism returns the index of the single nonzero entry, or
// false if the vector is zero or has more than one active mechanism.
func (v FeedbackVector) ActiveMechanism() (int, bool) {
	active := -1
	for i, s := range v {
		if s == 0 {
			continue
		}
		if active >= 0 {
			return -1, false
		}
		active = i
	}
	if active < 0 {
		return -1, false
	}
	return active, true
}

// Feedback is one repression contribution applied to a model. Perturbed
// contributions are present in the baseline run and ablated in the
// paired comparison run; the engine owns those semantics.
type Feedback struct {
	Strengths FeedbackVector `json:"strengths"`
	Perturbed bool           `json:"perturbed"`
}

// LinearModel carries the decay-rate parameters of the linear model and
// the repression contributions applied to it.
type LinearModel struct {
	// G1 and G2 are the mRNA and protein decay rate constants.
	G1 float64 `json:"g1"`
	G2 float64 `json:"g2"`

	Feedbacks []Feedback `json:"feedbacks,omitempty"`
}

// New constructs a linear model from its two decay-rate parameters.
func New(g1, g2 float64) (*LinearModel, error) {
	for name, g := range map[string]float64{"g1": g1, "g2": g2} {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return nil, fmt.Errorf("decay rate %s is not finite", name)
		}
		if g < 0 {
			return nil, fmt.Errorf("decay rate %s is negative: %g", name, g)
		}
	}
	return &LinearModel{G1: g1, G2: g2}, nil
}

// AddFeedback appends a repression contribution. At most one
// contribution may be flagged perturbed.
func (m *LinearModel) AddFeedback(v FeedbackVector, perturbed bool) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if perturbed {
		for _, f := range m.Feedbacks {
			if f.Perturbed {
				return fmt.Errorf("model already has a perturbed feedback")
			}
		}
	}
	m.Feedbacks = append(m.Feedbacks, Feedback{Strengths: v, Perturbed: perturbed})
	return nil
}

// Permanent returns the strengths of the first unperturbed contribution,
// or false if none was added.
func (m *LinearModel) Permanent() (FeedbackVector, bool) {
	for _, f := range m.Feedbacks {
		if !f.Perturbed {
			return f.Strengths, true
		}
	}
	return FeedbackVector{}, false
}

// Perturbed returns the strengths of the perturbed contribution, or
// false if none was added.
func (m *LinearModel) Perturbed() (FeedbackVector, bool) {
	for _, f := range m.Feedbacks {
		if f.Perturbed {
			return f.Strengths, true
		}
	}
	return FeedbackVector{}, false
}
