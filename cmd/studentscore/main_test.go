package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studentscore/artifact"
	"studentscore/ml"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// setupArtifacts writes a constant-score model and the canonical columns
// into dir.
func setupArtifacts(t *testing.T, dir string) {
	t.Helper()
	columns := ml.FeatureNames()
	model, err := json.Marshal(ml.LinearRegression{
		Type:         ml.ModelLinearRegression,
		Intercept:    50,
		Coefficients: make([]float64, len(columns)),
		Features:     columns,
	})
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := json.Marshal(columns)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, artifact.DefaultModelPath), string(model))
	writeFile(t, filepath.Join(dir, artifact.DefaultColumnsPath), string(encoded))
}

func writeConfig(t *testing.T, dir, source string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, fmt.Sprintf(`artifacts:
  source: %s
  dir: %s
  db_path: %s
log:
  level: error
`, source, dir, filepath.Join(dir, "artifacts.db")))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	predictInput, predictLoop, predictJSON = "", false, false
	importModel, importColumns, importDB = artifact.DefaultModelPath, artifact.DefaultColumnsPath, ""
	servePort = 0

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "", "schema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Library_Usage_per_Week", "Gender_Male", "reference Female"} {
		if !strings.Contains(out, want) {
			t.Errorf("schema output missing %q:\n%s", want, out)
		}
	}
}

func TestPredictFromJSONInput(t *testing.T) {
	dir := t.TempDir()
	setupArtifacts(t, dir)
	cfg := writeConfig(t, dir, "file")
	input := filepath.Join(dir, "records.json")
	writeFile(t, input, `{"Gender":"Male"}
{"Sleep_Hours":40}
{"School_Type":"Public"}
`)

	out, err := execute(t, "", "--config", cfg, "predict", "--input", input, "--loop")
	if !errors.Is(err, errPresented) {
		t.Fatalf("expected presented failure, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	if lines[0] != `{"prediction":50,"display":"50.00"}` || lines[2] != lines[0] {
		t.Fatalf("unexpected results %q", lines)
	}
	if !strings.Contains(lines[1], `"stage":"validate"`) {
		t.Fatalf("unexpected failure %s", lines[1])
	}
}

func TestPredictTerminalDefaults(t *testing.T) {
	dir := t.TempDir()
	setupArtifacts(t, dir)
	cfg := writeConfig(t, dir, "file")

	out, err := execute(t, "\n", "--config", cfg, "predict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Predicted Final Score: 50.00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPredictMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "file")

	_, err := execute(t, "", "--config", cfg, "predict")
	if !errors.Is(err, artifact.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
	if !strings.Contains(err.Error(), artifact.DefaultModelPath) || !strings.Contains(err.Error(), artifact.DefaultColumnsPath) {
		t.Fatalf("error should name both artifacts: %v", err)
	}
}

func TestImportThenPredictFromStore(t *testing.T) {
	dir := t.TempDir()
	setupArtifacts(t, dir)
	cfg := writeConfig(t, dir, "sqlite")

	out, err := execute(t, "", "--config", cfg, "import",
		"--model", filepath.Join(dir, artifact.DefaultModelPath),
		"--columns", filepath.Join(dir, artifact.DefaultColumnsPath))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported into "+filepath.Join(dir, "artifacts.db")) {
		t.Fatalf("import should name the store it wrote:\n%s", out)
	}
	if !strings.Contains(out, "feature_columns") || !strings.Contains(out, "model") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	out, err = execute(t, `{"Gender":"Female"}`, "--config", cfg, "predict", "--input", "-")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if strings.TrimSpace(out) != `{"prediction":50,"display":"50.00"}` {
		t.Fatalf("unexpected output %q", out)
	}
}
