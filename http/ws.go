package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"studentscore/form"
	"studentscore/ml"
)

// MessageType websocket message type
type MessageType string

const (
	PredictRequest MessageType = "predict"
	PredictResult  MessageType = "result"
	PredictFailure MessageType = "error"
)

const (
	socketIdleTimeout  = 10 * time.Minute
	socketWriteTimeout = 10 * time.Second
	socketMaxMessage   = 64 << 10
)

// Message is one frame in either direction. Requests carry the raw record in
// Record; replies carry Result or Error.
type Message struct {
	Type      MessageType            `json:"type"`
	ID        string                 `json:"id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Record    map[string]interface{} `json:"record,omitempty"`
	Result    *ml.Result             `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Stage     string                 `json:"stage,omitempty"`
	Problems  []ml.FieldProblem      `json:"problems,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handlePredictSocket answers each predict message on the connection in
// order. A failed prediction is reported and the connection stays open.
func (a *API) handlePredictSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	requestID := GetRequestID(r.Context())
	logger := a.logger.With(zap.String("request_id", requestID))
	logger.Info("websocket client connected")
	defer logger.Info("websocket client disconnected")

	conn.SetReadLimit(socketMaxMessage)
	for {
		conn.SetReadDeadline(time.Now().Add(socketIdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		reply := a.answer(r.Context(), data)
		conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write error", zap.Error(err))
			return
		}
	}
}

func (a *API) answer(ctx context.Context, data []byte) Message {
	var request Message
	if err := json.Unmarshal(data, &request); err != nil {
		return Message{Type: PredictFailure, Timestamp: time.Now(), Error: "invalid message: " + err.Error(), Stage: "collect"}
	}
	reply := Message{ID: request.ID, Timestamp: time.Now()}
	if request.Type != PredictRequest {
		reply.Type = PredictFailure
		reply.Error = "unsupported message type " + string(request.Type)
		reply.Stage = "collect"
		return reply
	}

	if request.Record == nil {
		reply.Type = PredictFailure
		reply.Error = "predict message has no record"
		reply.Stage = "collect"
		return reply
	}

	result, err := a.predict(ctx, request.Record)
	if err == nil {
		reply.Type = PredictResult
		reply.Result = &result
		return reply
	}

	reply.Type = PredictFailure
	reply.Error = err.Error()
	reply.Stage = form.Stage(err)
	var verr *ml.ValidationError
	if errors.As(err, &verr) {
		reply.Problems = verr.Problems
	}
	return reply
}
