package model

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/mchmarny/attrition/pkg/attrition"
	"gopkg.in/yaml.v3"
)

const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

var (
	// ErrColumnMismatch is returned when a feature vector does not carry
	// the columns the pipeline was fit on, in the same order.
	ErrColumnMismatch = errors.New("feature vector does not match pipeline columns")

	errInvalidPipeline = errors.New("invalid pipeline")
)

//go:embed default.yaml
var defaultPipeline []byte

// Column is one input column of the pipeline.
// Numeric columns are standardized as (x - Mean) / Scale and multiplied
// by Weight. Categorical columns are one-hot encoded; Levels maps each
// known category to its weight and unknown categories contribute nothing.
type Column struct {
	Name   string             `yaml:"name" json:"name"`
	Kind   string             `yaml:"kind" json:"kind"`
	Mean   float64            `yaml:"mean,omitempty" json:"mean,omitempty"`
	Scale  float64            `yaml:"scale,omitempty" json:"scale,omitempty"`
	Weight float64            `yaml:"weight,omitempty" json:"weight,omitempty"`
	Levels map[string]float64 `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// Pipeline is a frozen logistic scoring pipeline.
type Pipeline struct {
	Name      string   `yaml:"name" json:"name"`
	Version   string   `yaml:"version" json:"version"`
	Intercept float64  `yaml:"intercept" json:"intercept"`
	Cols      []Column `yaml:"columns" json:"columns"`
}

// Load reads the pipeline at path. Failures wrap attrition.ErrModelUnavailable.
func Load(path string) (*Pipeline, error) {
	if path == "" {
		return nil, fmt.Errorf("model path not specified: %w", attrition.ErrModelUnavailable)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w: %w", path, attrition.ErrModelUnavailable, err)
	}

	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w: %w", path, attrition.ErrModelUnavailable, err)
	}

	slog.Debug("model loaded", "path", path, "name", p.Name, "version", p.Version, "columns", len(p.Cols))
	return p, nil
}

// Default returns the pipeline shipped with the binary.
func Default() (*Pipeline, error) {
	p, err := Parse(defaultPipeline)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in model: %w: %w", attrition.ErrModelUnavailable, err)
	}
	return p, nil
}

// Parse decodes a YAML or JSON pipeline document and validates it.
func Parse(b []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decoding pipeline: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Pipeline) validate() error {
	if len(p.Cols) == 0 {
		return fmt.Errorf("%w: no columns", errInvalidPipeline)
	}

	seen := make(map[string]bool, len(p.Cols))
	for i, c := range p.Cols {
		if c.Name == "" {
			return fmt.Errorf("%w: column %d has no name", errInvalidPipeline, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %s", errInvalidPipeline, c.Name)
		}
		seen[c.Name] = true

		switch c.Kind {
		case KindNumeric:
			if c.Scale == 0 {
				return fmt.Errorf("%w: numeric column %s has zero scale", errInvalidPipeline, c.Name)
			}
		case KindCategorical:
			if len(c.Levels) == 0 {
				return fmt.Errorf("%w: categorical column %s has no levels", errInvalidPipeline, c.Name)
			}
		default:
			return fmt.Errorf("%w: column %s has unknown kind %q", errInvalidPipeline, c.Name, c.Kind)
		}
	}
	return nil
}

// Columns returns the column names in the order the pipeline expects them.
func (p *Pipeline) Columns() []string {
	names := make([]string, len(p.Cols))
	for i, c := range p.Cols {
		names[i] = c.Name
	}
	return names
}

// Levels returns the sorted categories of the named categorical column,
// or nil when the pipeline has no such column.
func (p *Pipeline) Levels(name string) []string {
	for _, c := range p.Cols {
		if c.Name == name && c.Kind == KindCategorical {
			return slices.Sorted(maps.Keys(c.Levels))
		}
	}
	return nil
}

// PredictProba returns [P(stay), P(leave)] for v.
func (p *Pipeline) PredictProba(v attrition.FeatureVector) ([]float64, error) {
	if len(v) != len(p.Cols) {
		return nil, fmt.Errorf("got %d features, pipeline has %d columns: %w", len(v), len(p.Cols), ErrColumnMismatch)
	}

	z := p.Intercept
	for i, c := range p.Cols {
		f := v[i]
		if f.Name != c.Name {
			return nil, fmt.Errorf("position %d: got %s, expected %s: %w", i, f.Name, c.Name, ErrColumnMismatch)
		}

		switch c.Kind {
		case KindNumeric:
			if f.Categorical {
				return nil, fmt.Errorf("column %s expects a number, got %q: %w", c.Name, f.Category, ErrColumnMismatch)
			}
			z += c.Weight * (f.Number - c.Mean) / c.Scale
		case KindCategorical:
			if !f.Categorical {
				return nil, fmt.Errorf("column %s expects a category, got %v: %w", c.Name, f.Number, ErrColumnMismatch)
			}
			z += c.Levels[f.Category]
		}
	}

	prob := sigmoid(z)
	return []float64{1 - prob, prob}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// String summarizes the pipeline for logs.
func (p *Pipeline) String() string {
	return fmt.Sprintf("%s@%s [%s]", p.Name, p.Version, strings.Join(p.Columns(), ","))
}
