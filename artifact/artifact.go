// Package artifact loads the trained model and its canonical feature column
// list once at process start.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"studentscore/ml"
)

// Name identifies one of the two required artifacts.
type Name string

const (
	Model          Name = "model"
	FeatureColumns Name = "feature_columns"
)

var (
	ErrMissingArtifact = errors.New("missing artifact")
	ErrCorruptArtifact = errors.New("corrupt artifact")
)

// MissingArtifactError lists every required artifact that could not be found.
type MissingArtifactError struct {
	Artifacts []Name
	Locations []string
}

func (e *MissingArtifactError) Error() string {
	parts := make([]string, len(e.Artifacts))
	for i, name := range e.Artifacts {
		parts[i] = fmt.Sprintf("%s (%s)", name, e.Locations[i])
	}
	return "missing artifact: " + strings.Join(parts, ", ")
}

func (e *MissingArtifactError) Unwrap() error {
	return ErrMissingArtifact
}

// CorruptArtifactError reports an artifact that exists but cannot be used.
type CorruptArtifactError struct {
	Artifact Name
	Location string
	Err      error
}

func (e *CorruptArtifactError) Error() string {
	return fmt.Sprintf("corrupt artifact %s (%s): %v", e.Artifact, e.Location, e.Err)
}

func (e *CorruptArtifactError) Unwrap() []error {
	return []error{ErrCorruptArtifact, e.Err}
}

// Source reads raw artifact payloads. Read must return an error matching
// fs.ErrNotExist when the artifact is absent.
type Source interface {
	Read(ctx context.Context, name Name) ([]byte, error)
	Location(name Name) string
}

// Artifacts is the immutable pair every prediction depends on.
type Artifacts struct {
	model   ml.Regressor
	columns []string
	source  string
}

func (a *Artifacts) Model() ml.Regressor {
	return a.model
}

// Columns returns a copy of the canonical feature column list.
func (a *Artifacts) Columns() []string {
	return append([]string(nil), a.columns...)
}

// Source describes where the artifacts were loaded from.
func (a *Artifacts) Source() string {
	return a.source
}

// Load reads, decodes and cross-checks both artifacts.
func Load(ctx context.Context, src Source) (*Artifacts, error) {
	payloads := make(map[Name][]byte, 2)
	missing := &MissingArtifactError{}
	for _, name := range []Name{Model, FeatureColumns} {
		payload, err := src.Read(ctx, name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing.Artifacts = append(missing.Artifacts, name)
			missing.Locations = append(missing.Locations, src.Location(name))
		case err != nil:
			return nil, &CorruptArtifactError{Artifact: name, Location: src.Location(name), Err: err}
		default:
			payloads[name] = payload
		}
	}
	if len(missing.Artifacts) > 0 {
		return nil, missing
	}

	model, err := ml.DecodeModel(payloads[Model])
	if err != nil {
		return nil, &CorruptArtifactError{Artifact: Model, Location: src.Location(Model), Err: err}
	}
	columns, err := DecodeColumns(payloads[FeatureColumns])
	if err != nil {
		return nil, &CorruptArtifactError{Artifact: FeatureColumns, Location: src.Location(FeatureColumns), Err: err}
	}
	if err := checkCompatible(model, columns); err != nil {
		return nil, &CorruptArtifactError{Artifact: Model, Location: src.Location(Model), Err: err}
	}

	return &Artifacts{
		model:   model,
		columns: columns,
		source:  src.Location(Model),
	}, nil
}

// DecodeColumns decodes a JSON array of column names and rejects lists the
// encoder could not align to.
func DecodeColumns(payload []byte) ([]string, error) {
	var columns []string
	if err := json.Unmarshal(payload, &columns); err != nil {
		return nil, err
	}
	if _, err := ml.NewEncoder(columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func checkCompatible(model ml.Regressor, columns []string) error {
	if namer, ok := model.(ml.FeatureNamer); ok {
		if names := namer.FeatureNames(); len(names) > 0 {
			if len(names) != len(columns) {
				return fmt.Errorf("model was trained on %d columns, column list has %d", len(names), len(columns))
			}
			for i := range names {
				if names[i] != columns[i] {
					return fmt.Errorf("model column %d is %q, column list has %q", i, names[i], columns[i])
				}
			}
			return nil
		}
	}
	if counter, ok := model.(ml.FeatureCounter); ok {
		if n := counter.NumFeatures(); n > 0 && n != len(columns) {
			return fmt.Errorf("model expects %d features, column list has %d", n, len(columns))
		}
	}
	return nil
}
