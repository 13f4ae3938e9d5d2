package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"studentscore/form"
	"studentscore/ml"
	"studentscore/monitoring"
)

// API exposes one Predictor over HTTP.
type API struct {
	predictor *ml.Predictor
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

func NewAPI(predictor *ml.Predictor, logger *zap.Logger, metrics *monitoring.Metrics) *API {
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &API{predictor: predictor, logger: logger, metrics: metrics}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/schema", a.handleSchema)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
	mux.HandleFunc("GET /api/metrics", a.handleMetrics)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"uptime":      a.metrics.GetUptime().Round(time.Second).String(),
		"predictions": a.metrics.Snapshot(),
	})
}

func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(a.metrics.ExportPrometheus()))
}

// predict decodes and scores one submission, recording its outcome.
func (a *API) predict(ctx context.Context, values map[string]interface{}) (ml.Result, error) {
	start := time.Now()
	record, err := ml.DecodeRecord(values)
	var result ml.Result
	if err == nil {
		result, err = a.predictor.Predict(ctx, record)
	}
	outcome := monitoring.OutcomeOK
	if err != nil {
		outcome = form.Stage(err)
	}
	a.metrics.Observe(outcome, time.Since(start))
	return result, err
}

type fieldSchema struct {
	Name      string      `json:"name"`
	Label     string      `json:"label"`
	Kind      string      `json:"kind"`
	Help      string      `json:"help,omitempty"`
	Min       *float64    `json:"min,omitempty"`
	Max       *float64    `json:"max,omitempty"`
	Step      float64     `json:"step,omitempty"`
	Integer   bool        `json:"integer,omitempty"`
	Default   interface{} `json:"default"`
	Options   []string    `json:"options,omitempty"`
	Reference string      `json:"reference,omitempty"`
}

type schemaResponse struct {
	Fields          []fieldSchema `json:"fields"`
	Columns         []string      `json:"columns"`
	UnknownCategory string        `json:"unknown_category"`
}

func (a *API) handleSchema(w http.ResponseWriter, r *http.Request) {
	fields := ml.Fields()
	response := schemaResponse{
		Fields:          make([]fieldSchema, 0, len(fields)),
		Columns:         a.predictor.Encoder().Columns(),
		UnknownCategory: string(a.predictor.Policy()),
	}
	for _, f := range fields {
		fs := fieldSchema{
			Name:  f.Name,
			Label: f.Label,
			Kind:  f.Kind.String(),
			Help:  f.Help,
		}
		if f.Kind == ml.Numeric {
			lo, hi := f.Min, f.Max
			fs.Min = &lo
			if !math.IsInf(hi, 1) {
				fs.Max = &hi
			}
			fs.Step = f.Step
			fs.Integer = f.Integer
			fs.Default = f.Default
		} else {
			fs.Options = f.Options
			fs.Default = f.Options[0]
			fs.Reference = f.Reference()
		}
		response.Fields = append(response.Fields, fs)
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	values, err := decodeObject(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		a.metrics.Observe("collect", 0)
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "collect")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "collect")
		return
	}

	result, err := a.predict(r.Context(), values)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeObject reads exactly one JSON object from body.
func decodeObject(body io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var values map[string]interface{}
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, errors.New("expected a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the JSON object")
	}
	return values, nil
}

type errorResponse struct {
	Error    string            `json:"error"`
	Stage    string            `json:"stage,omitempty"`
	Problems []ml.FieldProblem `json:"problems,omitempty"`
}

func (a *API) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	stage := form.Stage(err)
	response := errorResponse{Error: err.Error(), Stage: stage}

	var verr *ml.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Problems = verr.Problems
		writeJSON(w, http.StatusBadRequest, response)
	case errors.Is(err, ml.ErrPredictionFailure):
		a.logger.Warn("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusUnprocessableEntity, response)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, response)
	default:
		writeJSON(w, http.StatusInternalServerError, response)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, stage string) {
	writeJSON(w, status, errorResponse{Error: message, Stage: stage})
}
