package artifact

import (
	"context"
	"os"
	"path/filepath"
)

const (
	DefaultModelPath   = "student_performance_model.json"
	DefaultColumnsPath = "feature_columns.json"
)

// FileSource reads each artifact from its own file.
type FileSource struct {
	ModelPath   string
	ColumnsPath string
}

// NewFileSource resolves relative paths against dir.
func NewFileSource(dir, modelPath, columnsPath string) FileSource {
	if modelPath == "" {
		modelPath = DefaultModelPath
	}
	if columnsPath == "" {
		columnsPath = DefaultColumnsPath
	}
	if dir != "" {
		if !filepath.IsAbs(modelPath) {
			modelPath = filepath.Join(dir, modelPath)
		}
		if !filepath.IsAbs(columnsPath) {
			columnsPath = filepath.Join(dir, columnsPath)
		}
	}
	return FileSource{ModelPath: modelPath, ColumnsPath: columnsPath}
}

func (s FileSource) Read(ctx context.Context, name Name) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Location(name))
}

func (s FileSource) Location(name Name) string {
	if name == Model {
		return s.ModelPath
	}
	return s.ColumnsPath
}

// Paths returns the files backing the source.
func (s FileSource) Paths() []string {
	return []string{s.ModelPath, s.ColumnsPath}
}
