package server

import (
	"encoding/json"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Envelope statuses.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

const internalError = "Internal server error"

type successBody struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data"`
}

type failBody struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successBody{Status: statusSuccess, Data: data})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	writeJSON(w, http.StatusOK, successBody{Status: statusSuccess, Results: &n, Data: items})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failBody{Status: statusFail, Message: message})
}

// writeInternal logs err and answers 500. The stack is only exposed in dev
// mode.
func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("server: request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	body := failBody{Status: statusError, Message: internalError}
	if s.devMode {
		body.Stack = eris.ToString(err, true)
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
