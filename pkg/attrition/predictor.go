package attrition

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// DefaultThreshold is the validated operating point of the classifier.
// Probabilities at or above it are labeled LabelLeave.
const DefaultThreshold = 0.35

// Label is the binary decision derived from a probability.
type Label string

const (
	LabelStay  Label = "Stay"
	LabelLeave Label = "Leave"
)

// Classifier scores a feature vector. PredictProba returns the
// probability pair of the two classes; element 1 is the positive class.
type Classifier interface {
	PredictProba(v FeatureVector) ([]float64, error)
}

// Result is the outcome of a single prediction.
type Result struct {
	Probability float64       `json:"probability" yaml:"probability"`
	Label       Label         `json:"label" yaml:"label"`
	Threshold   float64       `json:"threshold" yaml:"threshold"`
	Features    FeatureVector `json:"features" yaml:"features"`
}

// Leave reports whether the employee is predicted to leave.
func (r *Result) Leave() bool {
	return r.Label == LabelLeave
}

// Decide applies threshold to probability.
func Decide(probability, threshold float64) Label {
	if probability >= threshold {
		return LabelLeave
	}
	return LabelStay
}

// Option configures a Predictor.
type Option func(*Predictor) error

// WithThreshold overrides DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(p *Predictor) error {
		if math.IsNaN(t) || t < 0 || t > 1 {
			return fmt.Errorf("threshold must be between 0 and 1, got %v", t)
		}
		p.threshold = t
		return nil
	}
}

// WithJobRoles replaces the job roles accepted by validation.
func WithJobRoles(roles []string) Option {
	return func(p *Predictor) error {
		if len(roles) == 0 {
			return fmt.Errorf("at least one job role required")
		}
		p.roles = append([]string(nil), roles...)
		return nil
	}
}

// Predictor turns raw employee attributes into a Result. The model is
// never mutated, so a Predictor is safe for concurrent use.
type Predictor struct {
	model     Classifier
	threshold float64
	roles     []string
}

// NewPredictor creates a Predictor for model. A nil model is allowed;
// every Predict call then returns ErrModelUnavailable.
func NewPredictor(model Classifier, opts ...Option) (*Predictor, error) {
	p := &Predictor{
		model:     model,
		threshold: DefaultThreshold,
		roles:     KnownJobRoles,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Available reports whether a model is loaded.
func (p *Predictor) Available() bool {
	return p != nil && p.model != nil
}

// Threshold returns the decision threshold in use.
func (p *Predictor) Threshold() float64 {
	return p.threshold
}

// JobRoles returns the job roles accepted by validation.
func (p *Predictor) JobRoles() []string {
	return append([]string(nil), p.roles...)
}

// Predict validates e, engineers its features, scores them and applies
// the decision threshold.
func (p *Predictor) Predict(ctx context.Context, e Employee) (*Result, error) {
	if !p.Available() {
		return nil, ErrModelUnavailable
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := e.validate(p.roles); err != nil {
		return nil, err
	}

	vec, err := BuildFeatureVector(e)
	if err != nil {
		return nil, err
	}

	probs, err := p.model.PredictProba(vec)
	if err != nil {
		return nil, fmt.Errorf("scoring feature vector: %w", err)
	}

	prob, err := positive(probs)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Probability: prob,
		Label:       Decide(prob, p.threshold),
		Threshold:   p.threshold,
		Features:    vec,
	}

	slog.Debug("prediction", "probability", r.Probability, "label", r.Label, "threshold", r.Threshold)
	return r, nil
}

func positive(probs []float64) (float64, error) {
	if len(probs) != 2 {
		return 0, fmt.Errorf("expected 2 class probabilities, got %d: %w", len(probs), ErrBadProbability)
	}
	for _, v := range probs {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return 0, fmt.Errorf("probability %v out of range: %w", v, ErrBadProbability)
		}
	}
	return probs[1], nil
}
