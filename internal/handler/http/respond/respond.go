// Package respond writes JSON responses. Client errors carry their message
// verbatim; server errors are logged with secrets masked and answered with a
// generic message, or with the masked message where the caller must see it.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"amazetimes/internal/domain/entity"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSON writes v with the given status code. A nil v writes headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// ヘッダー送信後なのでログのみ
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes msg as a client error.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// SafeError answers err with the given status code. Below 500 the message of
// err is returned as is, with the failing field of a ValidationError. From
// 500 upwards only "internal server error" leaves the process.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		body := ErrorBody{Error: err.Error()}
		var ve *entity.ValidationError
		if errors.As(err, &ve) {
			body = ErrorBody{Error: ve.Message, Field: ve.Field}
		}
		JSON(w, code, body)
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: "internal server error"})
}

// MaskedError answers err with its message after SanitizeError has masked
// keys, passwords and tokens. It is for failures whose text the user has to
// read to correct the request, such as a rejected write.
func MaskedError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	msg := SanitizeError(err)
	if code >= http.StatusInternalServerError {
		slog.Default().Error("request failed",
			slog.Int("code", code),
			slog.String("error", msg))
	}
	JSON(w, code, ErrorBody{Error: msg})
}
