package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

func encode(status int, data any) ([]byte, error) {
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(Envelope{Success: status < 400, Data: data})
	return buf.Bytes(), err
}

func writeBody(w http.ResponseWriter, status int, body []byte, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil && logger != nil {
		logger.Debug("write response", slog.Any("error", err))
	}
}

// JSON writes data in an envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	body, err := encode(status, data)
	if err != nil {
		if logger != nil {
			logger.Error("failed to encode JSON response", slog.Any("error", err))
		}
		Error(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}
	writeBody(w, status, body, logger)
}

// Success writes a 200 OK envelope.
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	body, err := json.Marshal(Envelope{Success: false, Error: message})
	if err != nil {
		if logger != nil {
			logger.Error("failed to encode error response", slog.Any("error", err))
		}
		return
	}
	writeBody(w, status, append(body, '\n'), logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, message, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, message, logger)
}
