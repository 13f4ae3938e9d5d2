package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// ErrPredictionFailure is wrapped by every PredictionError.
var ErrPredictionFailure = errors.New("prediction failed")

// PredictionError reports a model invocation that failed for one request.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() []error {
	return []error{ErrPredictionFailure, e.Err}
}

// CategoryPolicy decides what happens to features that have no canonical
// column, typically categories unseen at training time.
type CategoryPolicy string

const (
	// PolicyIgnore drops them silently.
	PolicyIgnore CategoryPolicy = "ignore"
	// PolicyLog drops them and logs a warning once per feature.
	PolicyLog CategoryPolicy = "log"
	// PolicyReject fails the request with a ValidationError.
	PolicyReject CategoryPolicy = "reject"
)

func ParseCategoryPolicy(s string) (CategoryPolicy, error) {
	switch p := CategoryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyIgnore, nil
	case PolicyIgnore, PolicyLog, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown category policy %q (want ignore, log or reject)", s)
	}
}

// Result is the outcome of one successful prediction.
type Result struct {
	Value   float64  `json:"prediction"`
	Display string   `json:"display"`
	Dropped []string `json:"dropped,omitempty"`
}

// FormatScore renders a prediction for display.
func FormatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

const warnCacheSize = 256

// Predictor runs validation, encoding and model invocation for one record at
// a time. It holds no per-request state and is safe for concurrent use.
type Predictor struct {
	encoder *Encoder
	model   Regressor
	policy  CategoryPolicy
	logger  *zap.Logger
	warned  *lru.Cache[string, struct{}]
}

type PredictorOption func(*Predictor)

func WithCategoryPolicy(policy CategoryPolicy) PredictorOption {
	return func(p *Predictor) {
		p.policy = policy
	}
}

func WithLogger(logger *zap.Logger) PredictorOption {
	return func(p *Predictor) {
		p.logger = logger
	}
}

func NewPredictor(model Regressor, columns []string, opts ...PredictorOption) (*Predictor, error) {
	if model == nil {
		return nil, errors.New("model is nil")
	}
	encoder, err := NewEncoder(columns)
	if err != nil {
		return nil, err
	}
	warned, err := lru.New[string, struct{}](warnCacheSize)
	if err != nil {
		return nil, err
	}
	p := &Predictor{
		encoder: encoder,
		model:   model,
		policy:  PolicyIgnore,
		logger:  zap.NewNop(),
		warned:  warned,
	}
	for _, opt := range opts {
		opt(p)
	}
	if missing := encoder.MissingFields(); len(missing) > 0 {
		if p.policy == PolicyReject {
			return nil, fmt.Errorf("model has no column for fields %s", strings.Join(missing, ", "))
		}
		p.logger.Warn("model has no column for some fields, their values are ignored",
			zap.Strings("fields", missing),
		)
	}
	return p, nil
}

func (p *Predictor) Encoder() *Encoder {
	return p.encoder
}

func (p *Predictor) Policy() CategoryPolicy {
	return p.policy
}

// Predict validates and encodes r, then asks the model for a score. Model
// failures come back as *PredictionError and never affect later calls.
func (p *Predictor) Predict(ctx context.Context, r RawRecord) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := r.Validate(p.policy == PolicyReject); err != nil {
		return Result{}, err
	}

	vector, dropped := p.encoder.Encode(r)
	if len(dropped) > 0 {
		switch p.policy {
		case PolicyReject:
			verr := &ValidationError{}
			for _, name := range dropped {
				verr.add(name, "no model column for feature %s", name)
			}
			return Result{}, verr
		case PolicyLog:
			p.warnDropped(dropped)
		}
	}

	value, err := p.invoke(vector.Values)
	if err != nil {
		return Result{}, &PredictionError{Err: err}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{}, &PredictionError{Err: fmt.Errorf("model returned non-finite value %v", value)}
	}
	return Result{Value: value, Display: FormatScore(value), Dropped: dropped}, nil
}

func (p *Predictor) invoke(features []float64) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()
	return p.model.Predict(features)
}

func (p *Predictor) warnDropped(dropped []string) {
	for _, name := range dropped {
		if ok, _ := p.warned.ContainsOrAdd(name, struct{}{}); ok {
			continue
		}
		p.logger.Warn("feature has no model column, ignoring it",
			zap.String("feature", name),
			zap.Int("columns", p.encoder.Width()),
		)
	}
}
