package ml

import (
	"errors"
	"fmt"
)

// LinearRegression scores a row as intercept + coefficients·features.
type LinearRegression struct {
	Type         string    `json:"type"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Features     []string  `json:"feature_names,omitempty"`
}

func (m *LinearRegression) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("shape mismatch: model expects %d features, got %d", len(m.Coefficients), len(features))
	}
	sum := m.Intercept
	for i, coef := range m.Coefficients {
		sum += coef * features[i]
	}
	return sum, nil
}

func (m *LinearRegression) NumFeatures() int {
	return len(m.Coefficients)
}

func (m *LinearRegression) FeatureNames() []string {
	return append([]string(nil), m.Features...)
}

func (m *LinearRegression) validate() error {
	if len(m.Coefficients) == 0 {
		return errors.New("linear model has no coefficients")
	}
	if len(m.Features) > 0 && len(m.Features) != len(m.Coefficients) {
		return fmt.Errorf("linear model has %d coefficients but %d feature names", len(m.Coefficients), len(m.Features))
	}
	return nil
}
