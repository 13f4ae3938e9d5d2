package form

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"studentscore/ml"
)

// TerminalForm prompts for every field on a line-oriented terminal. An empty
// answer keeps the field's default.
type TerminalForm struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalForm(in io.Reader, out io.Writer) *TerminalForm {
	return &TerminalForm{in: bufio.NewReader(in), out: out}
}

func (f *TerminalForm) CollectRawRecord(ctx context.Context) (ml.RawRecord, error) {
	record := ml.DefaultRecord()
	fmt.Fprintln(f.out, "Enter student characteristics to predict their final score.")
	for i, field := range ml.Fields() {
		if err := ctx.Err(); err != nil {
			return ml.RawRecord{}, err
		}
		value, err := f.ask(field)
		if errors.Is(err, io.EOF) && i == 0 {
			return ml.RawRecord{}, io.EOF
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return ml.RawRecord{}, err
		}
		if value == nil {
			continue
		}
		if err := record.Set(field.Name, value); err != nil {
			return ml.RawRecord{}, err
		}
	}
	return record, nil
}

// ask prompts until the answer is valid. A nil value means keep the default.
// After end of input every remaining field keeps its default.
func (f *TerminalForm) ask(field ml.Field) (interface{}, error) {
	for {
		fmt.Fprint(f.out, prompt(field))
		line, readErr := f.in.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, readErr
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if errors.Is(readErr, io.EOF) {
				fmt.Fprintln(f.out)
				return nil, io.EOF
			}
			return nil, nil
		}

		value, err := parseAnswer(field, line)
		if err == nil {
			return value, nil
		}
		fmt.Fprintf(f.out, "  %v\n", err)
		if errors.Is(readErr, io.EOF) {
			return nil, io.EOF
		}
	}
}

func prompt(field ml.Field) string {
	if field.Kind == ml.Categorical {
		return fmt.Sprintf("%s (%s) [%s]: ", field.Label, strings.Join(field.Options, "/"), field.Options[0])
	}
	if math.IsInf(field.Max, 1) {
		return fmt.Sprintf("%s (>= %v) [%v]: ", field.Label, field.Min, field.Default)
	}
	return fmt.Sprintf("%s (%v-%v) [%v]: ", field.Label, field.Min, field.Max, field.Default)
}

func parseAnswer(field ml.Field, answer string) (interface{}, error) {
	if field.Kind == ml.Categorical {
		for _, option := range field.Options {
			if strings.EqualFold(option, answer) {
				return option, nil
			}
		}
		return nil, fmt.Errorf("choose one of %s", strings.Join(field.Options, ", "))
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", answer)
	}
	if err := field.Check(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (f *TerminalForm) PresentResult(result ml.Result, err error) {
	if err != nil {
		fmt.Fprintf(f.out, "Prediction failed: %v\n", err)
		return
	}
	fmt.Fprintf(f.out, "Predicted Final Score: %s\n", result.Display)
}
