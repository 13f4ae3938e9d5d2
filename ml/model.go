package ml

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Regressor produces one score from an aligned feature row.
type Regressor interface {
	Predict(features []float64) (float64, error)
}

// FeatureCounter is implemented by models that know their input width.
// Zero means the width is not recorded.
type FeatureCounter interface {
	NumFeatures() int
}

// FeatureNamer is implemented by models that recorded the columns they were
// trained on.
type FeatureNamer interface {
	FeatureNames() []string
}

const (
	ModelLinearRegression = "linear_regression"
	ModelDecisionTree     = "decision_tree"
)

var ErrUnsupportedModel = errors.New("unsupported model type")

type modelHeader struct {
	Type string `json:"type"`
}

// DecodeModel decodes a serialized model document.
func DecodeModel(payload []byte) (Regressor, error) {
	var header modelHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, err
	}
	switch header.Type {
	case ModelLinearRegression:
		model := &LinearRegression{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, err
		}
		if err := model.validate(); err != nil {
			return nil, err
		}
		return model, nil
	case ModelDecisionTree:
		model := &DecisionTree{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, err
		}
		if err := model.validate(); err != nil {
			return nil, err
		}
		return model, nil
	case "":
		return nil, errors.New("model type is missing")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, header.Type)
	}
}
