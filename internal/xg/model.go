package xg

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

//go:embed default_model.json
var defaultModel []byte

// ErrSchemaMismatch means a model was trained on a different feature list.
var ErrSchemaMismatch = errors.New("model feature schema mismatch")

// Model scores one feature row with a goal probability in [0, 1].
type Model interface {
	Predict(f Features) (float64, error)
}

// Logistic is a logistic regression over the FeatureNames vector.
type Logistic struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// DefaultLogistic returns the built-in model.
func DefaultLogistic() (*Logistic, error) {
	return ParseLogistic(defaultModel)
}

// LoadLogistic reads a model file. An empty path loads the built-in model.
func LoadLogistic(path string) (*Logistic, error) {
	if path == "" {
		return DefaultLogistic()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := ParseLogistic(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}

// ParseLogistic decodes and schema-checks a model document.
func ParseLogistic(data []byte) (*Logistic, error) {
	var m Logistic
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Logistic) check() error {
	if len(m.Features) != len(FeatureNames) {
		return fmt.Errorf("%w: model has %d features, want %d", ErrSchemaMismatch, len(m.Features), len(FeatureNames))
	}
	for i, name := range FeatureNames {
		if m.Features[i] != name {
			return fmt.Errorf("%w: feature %d is %q, want %q", ErrSchemaMismatch, i, m.Features[i], name)
		}
	}
	if len(m.Coefficients) != len(m.Features) {
		return fmt.Errorf("%w: %d coefficients for %d features", ErrSchemaMismatch, len(m.Coefficients), len(m.Features))
	}
	return nil
}

// Predict implements Model.
func (m *Logistic) Predict(f Features) (float64, error) {
	v := f.Vector()
	if len(v) != len(m.Coefficients) {
		return 0, ErrSchemaMismatch
	}
	z := m.Intercept
	for i, x := range v {
		z += m.Coefficients[i] * x
	}
	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, fmt.Errorf("predict: non-finite score for %+v", f)
	}
	return p, nil
}
