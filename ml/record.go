package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidRecord is wrapped by every ValidationError.
var ErrInvalidRecord = errors.New("invalid record")

// ValidationError collects every problem found in one record.
type ValidationError struct {
	Problems []FieldProblem
}

type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return "invalid record: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Problems = append(e.Problems, FieldProblem{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

// RawRecord is one form submission.
type RawRecord struct {
	StudyHoursPerWeek    float64 `json:"Study_Hours_per_Week"`
	AttendancePercentage float64 `json:"Attendance_Percentage"`
	PreviousSemScore     float64 `json:"Previous_Sem_Score"`
	ParentalEducation    string  `json:"Parental_Education"`
	InternetAccess       string  `json:"Internet_Access"`
	FamilyIncome         float64 `json:"Family_Income"`
	TutoringClasses      string  `json:"Tutoring_Classes"`
	SportsActivity       string  `json:"Sports_Activity"`
	ExtraCurricular      string  `json:"Extra_Curricular"`
	SchoolType           string  `json:"School_Type"`
	SleepHours           float64 `json:"Sleep_Hours"`
	TravelTime           float64 `json:"Travel_Time"`
	TestAnxietyLevel     float64 `json:"Test_Anxiety_Level"`
	PeerInfluence        float64 `json:"Peer_Influence"`
	TeacherFeedback      string  `json:"Teacher_Feedback"`
	MotivationLevel      float64 `json:"Motivation_Level"`
	LibraryUsagePerWeek  int     `json:"Library_Usage_per_Week"`
	Gender               string  `json:"Gender"`
}

// DefaultRecord returns the values the form starts with.
func DefaultRecord() RawRecord {
	var r RawRecord
	for _, f := range schema {
		switch f.Kind {
		case Numeric:
			r.setNumeric(f.Name, f.Default)
		case Categorical:
			r.setCategory(f.Name, f.Options[0])
		}
	}
	return r
}

// Numeric returns the numeric fields keyed by field name.
func (r RawRecord) Numeric() map[string]float64 {
	return map[string]float64{
		FieldStudyHours:    r.StudyHoursPerWeek,
		FieldAttendance:    r.AttendancePercentage,
		FieldPreviousScore: r.PreviousSemScore,
		FieldFamilyIncome:  r.FamilyIncome,
		FieldSleepHours:    r.SleepHours,
		FieldTravelTime:    r.TravelTime,
		FieldTestAnxiety:   r.TestAnxietyLevel,
		FieldPeerInfluence: r.PeerInfluence,
		FieldMotivation:    r.MotivationLevel,
		FieldLibraryUsage:  float64(r.LibraryUsagePerWeek),
	}
}

// Categorical returns the categorical fields keyed by field name.
func (r RawRecord) Categorical() map[string]string {
	return map[string]string{
		FieldParentalEdu:     r.ParentalEducation,
		FieldInternetAccess:  r.InternetAccess,
		FieldTutoring:        r.TutoringClasses,
		FieldSports:          r.SportsActivity,
		FieldExtraCurricular: r.ExtraCurricular,
		FieldSchoolType:      r.SchoolType,
		FieldTeacherFeedback: r.TeacherFeedback,
		FieldGender:          r.Gender,
	}
}

// Set assigns a value to the named field, converting it to the field's type.
func (r *RawRecord) Set(name string, value interface{}) error {
	f, ok := LookupField(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	switch f.Kind {
	case Numeric:
		v, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if f.Integer {
			// int conversion of an out-of-range float is undefined
			if err := f.Check(v); err != nil {
				return err
			}
		}
		r.setNumeric(name, v)
	case Categorical:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected a string, got %T", name, value)
		}
		r.setCategory(name, NormalizeCategory(s))
	}
	return nil
}

func (r *RawRecord) setNumeric(name string, v float64) {
	switch name {
	case FieldStudyHours:
		r.StudyHoursPerWeek = v
	case FieldAttendance:
		r.AttendancePercentage = v
	case FieldPreviousScore:
		r.PreviousSemScore = v
	case FieldFamilyIncome:
		r.FamilyIncome = v
	case FieldSleepHours:
		r.SleepHours = v
	case FieldTravelTime:
		r.TravelTime = v
	case FieldTestAnxiety:
		r.TestAnxietyLevel = v
	case FieldPeerInfluence:
		r.PeerInfluence = v
	case FieldMotivation:
		r.MotivationLevel = v
	case FieldLibraryUsage:
		r.LibraryUsagePerWeek = int(v)
	}
}

func (r *RawRecord) setCategory(name, v string) {
	switch name {
	case FieldParentalEdu:
		r.ParentalEducation = v
	case FieldInternetAccess:
		r.InternetAccess = v
	case FieldTutoring:
		r.TutoringClasses = v
	case FieldSports:
		r.SportsActivity = v
	case FieldExtraCurricular:
		r.ExtraCurricular = v
	case FieldSchoolType:
		r.SchoolType = v
	case FieldTeacherFeedback:
		r.TeacherFeedback = v
	case FieldGender:
		r.Gender = v
	}
}

// Validate checks numeric ranges and, when strict is set, that every
// categorical value is a known option.
func (r RawRecord) Validate(strict bool) error {
	verr := &ValidationError{}
	numeric := r.Numeric()
	categorical := r.Categorical()
	for _, f := range schema {
		switch f.Kind {
		case Numeric:
			if err := f.Check(numeric[f.Name]); err != nil {
				verr.add(f.Name, "%s", err.Error())
			}
		case Categorical:
			if strict && !f.HasOption(categorical[f.Name]) {
				verr.add(f.Name, "%s: unknown category %q (expected one of %s)",
					f.Name, categorical[f.Name], strings.Join(f.Options, ", "))
			}
		}
	}
	return verr.orNil()
}

// DecodeRecord builds a record from loosely typed key/value input such as a
// decoded JSON object. Fields that are not present keep their form default.
func DecodeRecord(values map[string]interface{}) (RawRecord, error) {
	r := DefaultRecord()
	verr := &ValidationError{}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := r.Set(key, values[key]); err != nil {
			verr.add(key, "%s", err.Error())
		}
	}
	return r, verr.orNil()
}

// NormalizeCategory trims and NFC-normalizes a categorical label so visually
// identical input matches the training labels.
func NormalizeCategory(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}
}
