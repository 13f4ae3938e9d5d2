package ml

import (
	"fmt"
	"math"
	"sort"
)

// Field names accepted at the input boundary.
const (
	FieldStudyHours      = "Study_Hours_per_Week"
	FieldAttendance      = "Attendance_Percentage"
	FieldPreviousScore   = "Previous_Sem_Score"
	FieldParentalEdu     = "Parental_Education"
	FieldInternetAccess  = "Internet_Access"
	FieldFamilyIncome    = "Family_Income"
	FieldTutoring        = "Tutoring_Classes"
	FieldSports          = "Sports_Activity"
	FieldExtraCurricular = "Extra_Curricular"
	FieldSchoolType      = "School_Type"
	FieldSleepHours      = "Sleep_Hours"
	FieldTravelTime      = "Travel_Time"
	FieldTestAnxiety     = "Test_Anxiety_Level"
	FieldPeerInfluence   = "Peer_Influence"
	FieldTeacherFeedback = "Teacher_Feedback"
	FieldMotivation      = "Motivation_Level"
	FieldLibraryUsage    = "Library_Usage_per_Week"
	FieldGender          = "Gender"
)

type FieldKind int

const (
	Numeric FieldKind = iota
	Categorical
)

func (k FieldKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Field describes one input of the student form.
type Field struct {
	Name    string
	Label   string
	Kind    FieldKind
	Help    string
	Min     float64
	Max     float64
	Step    float64
	Integer bool
	Default float64

	// Options are listed in form order; the first one is the form default.
	Options []string
}

// Check reports whether v is an acceptable value for a numeric field.
func (f Field) Check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number", f.Name)
	}
	if f.Integer && v != math.Trunc(v) {
		return fmt.Errorf("%s must be a whole number, got %v", f.Name, v)
	}
	if v < f.Min || v > f.Max {
		if math.IsInf(f.Max, 1) {
			return fmt.Errorf("%s must be at least %v, got %v", f.Name, f.Min, v)
		}
		return fmt.Errorf("%s must be between %v and %v, got %v", f.Name, f.Min, f.Max, v)
	}
	return nil
}

// HasOption reports whether category is one of the field's known labels.
func (f Field) HasOption(category string) bool {
	for _, option := range f.Options {
		if option == category {
			return true
		}
	}
	return false
}

// Categories returns the known labels in the order the training data saw
// them, which is lexicographic.
func (f Field) Categories() []string {
	categories := append([]string(nil), f.Options...)
	sort.Strings(categories)
	return categories
}

// Reference returns the category whose indicator is dropped during one-hot
// expansion.
func (f Field) Reference() string {
	categories := f.Categories()
	if len(categories) == 0 {
		return ""
	}
	return categories[0]
}

// DerivedName returns the indicator column name for a category.
func (f Field) DerivedName(category string) string {
	return f.Name + "_" + category
}

// DerivedNames returns the indicator columns produced for the field, reference
// category excluded.
func (f Field) DerivedNames() []string {
	categories := f.Categories()
	if len(categories) < 2 {
		return nil
	}
	names := make([]string, 0, len(categories)-1)
	for _, category := range categories[1:] {
		names = append(names, f.DerivedName(category))
	}
	return names
}

var schema = []Field{
	{Name: FieldPreviousScore, Label: "Previous Semester Score", Kind: Numeric, Min: 0, Max: 100, Step: 0.1, Default: 75, Help: "Score from the prior semester."},
	{Name: FieldAttendance, Label: "Attendance Percentage", Kind: Numeric, Min: 50, Max: 100, Step: 0.1, Default: 80, Help: "Student's average attendance."},
	{Name: FieldStudyHours, Label: "Study Hours per Week", Kind: Numeric, Min: 0, Max: 50, Step: 0.1, Default: 20},
	{Name: FieldLibraryUsage, Label: "Library Usage per Week", Kind: Numeric, Min: 0, Max: 15, Step: 1, Integer: true, Default: 5},
	{Name: FieldGender, Label: "Gender", Kind: Categorical, Options: []string{"Female", "Male"}},
	{Name: FieldSchoolType, Label: "School Type", Kind: Categorical, Options: []string{"Private", "Public"}},
	{Name: FieldParentalEdu, Label: "Parental Education", Kind: Categorical, Options: []string{"Postgraduate", "High School", "Graduate"}},
	{Name: FieldFamilyIncome, Label: "Family Income", Kind: Numeric, Min: 0, Max: math.Inf(1), Step: 1000, Default: 50000},
	{Name: FieldInternetAccess, Label: "Internet Access", Kind: Categorical, Options: []string{"Yes", "No"}},
	{Name: FieldSleepHours, Label: "Sleep Hours", Kind: Numeric, Min: 4, Max: 10, Step: 0.1, Default: 7},
	{Name: FieldTravelTime, Label: "Travel Time (Hours)", Kind: Numeric, Min: 0.5, Max: 5, Step: 0.1, Default: 1.5},
	{Name: FieldTestAnxiety, Label: "Test Anxiety Level (1-10)", Kind: Numeric, Min: 1, Max: 10, Step: 0.1, Default: 5},
	{Name: FieldMotivation, Label: "Motivation Level (1-10)", Kind: Numeric, Min: 1, Max: 10, Step: 0.1, Default: 7.5},
	{Name: FieldPeerInfluence, Label: "Peer Influence (1-10)", Kind: Numeric, Min: 1, Max: 10, Step: 0.1, Default: 5},
	{Name: FieldTeacherFeedback, Label: "Teacher Feedback", Kind: Categorical, Options: []string{"Good", "Excellent", "Average", "Poor"}},
	{Name: FieldTutoring, Label: "Tutoring Classes", Kind: Categorical, Options: []string{"No", "Yes"}},
	{Name: FieldSports, Label: "Sports Activity", Kind: Categorical, Options: []string{"Yes", "No"}},
	{Name: FieldExtraCurricular, Label: "Extra Curricular", Kind: Categorical, Options: []string{"Yes", "No"}},
}

var schemaIndex = func() map[string]int {
	index := make(map[string]int, len(schema))
	for i, f := range schema {
		index[f.Name] = i
	}
	return index
}()

// Fields returns the form schema in presentation order.
func Fields() []Field {
	fields := make([]Field, len(schema))
	for i, f := range schema {
		f.Options = append([]string(nil), f.Options...)
		fields[i] = f
	}
	return fields
}

// LookupField returns the schema entry for name.
func LookupField(name string) (Field, bool) {
	i, ok := schemaIndex[name]
	if !ok {
		return Field{}, false
	}
	return schema[i], true
}

// FeatureNames returns every column the encoder can produce: numeric fields
// followed by the non-reference indicators of each categorical field. A
// model trained on the full category sets uses exactly these columns.
func FeatureNames() []string {
	names := make([]string, 0, 32)
	for _, f := range schema {
		if f.Kind == Numeric {
			names = append(names, f.Name)
		}
	}
	for _, f := range schema {
		if f.Kind == Categorical {
			names = append(names, f.DerivedNames()...)
		}
	}
	return names
}
