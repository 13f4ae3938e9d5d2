package ml

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultRecordIsValid(t *testing.T) {
	r := DefaultRecord()
	if err := r.Validate(true); err != nil {
		t.Fatalf("default record should validate: %v", err)
	}
	if r.Gender != "Female" || r.ParentalEducation != "Postgraduate" || r.TeacherFeedback != "Good" {
		t.Fatalf("unexpected categorical defaults: %+v", r)
	}
	if r.FamilyIncome != 50000 || r.MotivationLevel != 7.5 || r.LibraryUsagePerWeek != 5 {
		t.Fatalf("unexpected numeric defaults: %+v", r)
	}
}

func TestRawRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RawRecord)
		strict  bool
		wantErr bool
		field   string
	}{
		{name: "example record", mutate: func(r *RawRecord) {}, strict: true},
		{name: "attendance below range", mutate: func(r *RawRecord) { r.AttendancePercentage = 49.9 }, wantErr: true, field: FieldAttendance},
		{name: "score above range", mutate: func(r *RawRecord) { r.PreviousSemScore = 100.1 }, wantErr: true, field: FieldPreviousScore},
		{name: "negative income", mutate: func(r *RawRecord) { r.FamilyIncome = -1 }, wantErr: true, field: FieldFamilyIncome},
		{name: "large income", mutate: func(r *RawRecord) { r.FamilyIncome = 1e9 }},
		{name: "nan sleep", mutate: func(r *RawRecord) { r.SleepHours = math.NaN() }, wantErr: true, field: FieldSleepHours},
		{name: "library usage above range", mutate: func(r *RawRecord) { r.LibraryUsagePerWeek = 16 }, wantErr: true, field: FieldLibraryUsage},
		{name: "unknown category lenient", mutate: func(r *RawRecord) { r.Gender = "Other" }},
		{name: "unknown category strict", mutate: func(r *RawRecord) { r.Gender = "Other" }, strict: true, wantErr: true, field: FieldGender},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := exampleRecord()
			tt.mutate(&r)
			err := r.Validate(tt.strict)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Problems[0].Field != tt.field {
				t.Fatalf("expected problem on %s, got %+v", tt.field, verr.Problems)
			}
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	r := exampleRecord()
	r.SleepHours = 2
	r.TravelTime = 9
	err := r.Validate(false)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %+v", verr.Problems)
	}
}

func TestDecodeRecord(t *testing.T) {
	var values map[string]interface{}
	body := `{
		"Gender": " Male ",
		"School_Type": "Public",
		"Library_Usage_per_Week": 7,
		"Family_Income": 61000.5,
		"Teacher_Feedback": "Excellent"
	}`
	if err := json.Unmarshal([]byte(body), &values); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	r, err := DecodeRecord(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Gender != "Male" || r.SchoolType != "Public" || r.TeacherFeedback != "Excellent" {
		t.Fatalf("categorical fields not decoded: %+v", r)
	}
	if r.LibraryUsagePerWeek != 7 || r.FamilyIncome != 61000.5 {
		t.Fatalf("numeric fields not decoded: %+v", r)
	}
	// untouched fields keep their defaults
	if r.SleepHours != 7 || r.InternetAccess != "Yes" {
		t.Fatalf("defaults not kept: %+v", r)
	}
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   string
	}{
		{name: "unknown field", values: map[string]interface{}{"Shoe_Size": 42.0}, want: `unknown field "Shoe_Size"`},
		{name: "number as string", values: map[string]interface{}{FieldSleepHours: "7"}, want: "expected a number"},
		{name: "category as number", values: map[string]interface{}{FieldGender: 1.0}, want: "expected a string"},
		{name: "fractional integer", values: map[string]interface{}{FieldLibraryUsage: 2.5}, want: "whole number"},
		{name: "huge integer", values: map[string]interface{}{FieldLibraryUsage: 1e300}, want: "between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.values)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9
	if got := NormalizeCategory("  Cafe\u0301 "); got != "Caf\u00e9" {
		t.Fatalf("NormalizeCategory() = %q", got)
	}
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	if len(names) != 21 {
		t.Fatalf("expected 21 feature names, got %d: %v", len(names), names)
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate feature name %s", name)
		}
		seen[name] = true
	}
	for _, name := range []string{"Gender_Female", "School_Type_Private", "Parental_Education_Graduate", "Teacher_Feedback_Average"} {
		if seen[name] {
			t.Errorf("reference indicator %s must not be a feature", name)
		}
	}
}
