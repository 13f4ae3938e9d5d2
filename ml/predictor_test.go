package ml

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeModel struct {
	value float64
	err   error
	panic bool
	calls int
	last  []float64
}

func (f *fakeModel) Predict(features []float64) (float64, error) {
	f.calls++
	f.last = append([]float64(nil), features...)
	if f.panic {
		panic("index out of range")
	}
	return f.value, f.err
}

func TestPredictExampleScenario(t *testing.T) {
	model := &fakeModel{value: 82.5}
	predictor, err := NewPredictor(model, FeatureNames())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := predictor.Predict(context.Background(), exampleRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Display != "82.50" {
		t.Fatalf("expected display 82.50, got %q", result.Display)
	}
	if result.Value != 82.5 {
		t.Fatalf("expected value 82.5, got %v", result.Value)
	}
	if len(model.last) != len(FeatureNames()) {
		t.Fatalf("model got %d features, want %d", len(model.last), len(FeatureNames()))
	}
}

func TestPredictFailureIsRecoverable(t *testing.T) {
	model := &fakeModel{err: errors.New("shape mismatch")}
	predictor, err := NewPredictor(model, FeatureNames())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = predictor.Predict(context.Background(), exampleRecord())
	if !errors.Is(err, ErrPredictionFailure) {
		t.Fatalf("expected ErrPredictionFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "shape mismatch") {
		t.Fatalf("expected cause in error, got %q", err.Error())
	}

	model.err = nil
	model.value = 70
	result, err := predictor.Predict(context.Background(), exampleRecord())
	if err != nil {
		t.Fatalf("predictor should serve the next request: %v", err)
	}
	if result.Display != "70.00" {
		t.Fatalf("unexpected display %q", result.Display)
	}
}

func TestPredictRecoversModelPanic(t *testing.T) {
	predictor, err := NewPredictor(&fakeModel{panic: true}, FeatureNames())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = predictor.Predict(context.Background(), exampleRecord())
	var perr *PredictionError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PredictionError, got %v", err)
	}
}

func TestPredictRejectsNonFinite(t *testing.T) {
	predictor, err := NewPredictor(&fakeModel{value: math.Inf(1)}, FeatureNames())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = predictor.Predict(context.Background(), exampleRecord())
	if !errors.Is(err, ErrPredictionFailure) {
		t.Fatalf("expected ErrPredictionFailure, got %v", err)
	}
}

func TestPredictInvalidRecord(t *testing.T) {
	model := &fakeModel{value: 1}
	predictor, err := NewPredictor(model, FeatureNames())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := exampleRecord()
	r.SleepHours = 20
	_, err = predictor.Predict(context.Background(), r)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if model.calls != 0 {
		t.Fatal("model must not be called for an invalid record")
	}
}

func TestCategoryPolicies(t *testing.T) {
	unseen := exampleRecord()
	unseen.ParentalEducation = "Doctorate"

	t.Run("ignore", func(t *testing.T) {
		predictor, err := NewPredictor(&fakeModel{value: 50}, FeatureNames())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, err := predictor.Predict(context.Background(), unseen)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Dropped) != 1 || result.Dropped[0] != "Parental_Education_Doctorate" {
			t.Fatalf("unexpected dropped: %v", result.Dropped)
		}
	})

	t.Run("log", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		predictor, err := NewPredictor(&fakeModel{value: 50}, FeatureNames(),
			WithCategoryPolicy(PolicyLog), WithLogger(zap.New(core)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < 3; i++ {
			if _, err := predictor.Predict(context.Background(), unseen); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		entries := logs.FilterField(zap.String("feature", "Parental_Education_Doctorate")).All()
		if len(entries) != 1 {
			t.Fatalf("expected one warning, got %d", len(entries))
		}
	})

	t.Run("reject", func(t *testing.T) {
		model := &fakeModel{value: 50}
		predictor, err := NewPredictor(model, FeatureNames(), WithCategoryPolicy(PolicyReject))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = predictor.Predict(context.Background(), unseen)
		if !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("expected ErrInvalidRecord, got %v", err)
		}
		if model.calls != 0 {
			t.Fatal("model must not be called for a rejected record")
		}
	})

	t.Run("reject missing numeric column", func(t *testing.T) {
		columns := withoutColumn(FeatureNames(), FieldStudyHours)
		if _, err := NewPredictor(&fakeModel{}, columns, WithCategoryPolicy(PolicyReject)); err == nil {
			t.Fatal("expected a model without Study_Hours_per_Week to be refused")
		}
	})

	t.Run("warn missing numeric column", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		columns := withoutColumn(FeatureNames(), FieldStudyHours)
		predictor, err := NewPredictor(&fakeModel{value: 50}, columns, WithLogger(zap.New(core)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logs.FilterField(zap.Strings("fields", []string{FieldStudyHours})).Len() != 1 {
			t.Fatalf("expected one warning naming %s, got %v", FieldStudyHours, logs.All())
		}
		result, err := predictor.Predict(context.Background(), exampleRecord())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Dropped) != 0 {
			t.Fatalf("numeric fields must not be reported as dropped: %v", result.Dropped)
		}
	})

	t.Run("reject missing column", func(t *testing.T) {
		columns := FeatureNames()[:10]
		predictor, err := NewPredictor(&fakeModel{value: 50}, columns, WithCategoryPolicy(PolicyReject))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = predictor.Predict(context.Background(), exampleRecord())
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
	})
}

func TestParseCategoryPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CategoryPolicy
		wantErr bool
	}{
		{in: "", want: PolicyIgnore},
		{in: "ignore", want: PolicyIgnore},
		{in: " LOG ", want: PolicyLog},
		{in: "reject", want: PolicyReject},
		{in: "panic", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCategoryPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseCategoryPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseCategoryPolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatScore(t *testing.T) {
	tests := map[float64]string{
		82.5:     "82.50",
		0:        "0.00",
		99.999:   "100.00",
		-3.14159: "-3.14",
	}
	for in, want := range tests {
		if got := FormatScore(in); got != want {
			t.Errorf("FormatScore(%v) = %q, want %q", in, got, want)
		}
	}
}

func withoutColumn(columns []string, name string) []string {
	kept := make([]string, 0, len(columns))
	for _, column := range columns {
		if column != name {
			kept = append(kept, column)
		}
	}
	return kept
}
