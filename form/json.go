package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"studentscore/ml"
)

// JSONCollector reads a stream of JSON objects, one record each.
type JSONCollector struct {
	dec *json.Decoder
}

func NewJSONCollector(r io.Reader) *JSONCollector {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &JSONCollector{dec: dec}
}

func (c *JSONCollector) CollectRawRecord(ctx context.Context) (ml.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return ml.RawRecord{}, err
	}
	var values map[string]interface{}
	if err := c.dec.Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return ml.RawRecord{}, io.EOF
		}
		return ml.RawRecord{}, fmt.Errorf("decode record: %w", err)
	}
	if values == nil {
		return ml.RawRecord{}, errors.New("decode record: expected a JSON object")
	}
	return ml.DecodeRecord(values)
}

// JSONPresenter writes one JSON object per submission.
type JSONPresenter struct {
	enc *json.Encoder
}

func NewJSONPresenter(w io.Writer) *JSONPresenter {
	return &JSONPresenter{enc: json.NewEncoder(w)}
}

type failure struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
}

func (p *JSONPresenter) PresentResult(result ml.Result, err error) {
	if err != nil {
		_ = p.enc.Encode(failure{Error: err.Error(), Stage: Stage(err)})
		return
	}
	_ = p.enc.Encode(result)
}

// Stage names the step that produced err.
func Stage(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ml.ErrInvalidRecord):
		return "validate"
	case errors.Is(err, ml.ErrPredictionFailure):
		return "predict"
	default:
		return "collect"
	}
}
