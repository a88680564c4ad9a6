package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
)

// ErrorBody 是错误响应体。
type ErrorBody struct {
	Error APIError `json:"error"`
}

// APIError 描述一次请求失败。
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sanitizeLogValue 把控制字符替换为转义形式，防止日志注入。
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Int("status", status).Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("request failed")
	}
	respondJSON(w, r, status, ErrorBody{Error: APIError{Code: code, Message: message}})
}

// respondDomainError 把领域错误映射为 HTTP 状态码：
//
//	UNDERDETERMINED -> 422, INVALID_INPUT -> 400, UNAVAILABLE -> 503,
//	DIMENSION_MISMATCH 及其他 -> 500
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsUnderdetermined(err):
		respondError(w, r, http.StatusUnprocessableEntity, core.ErrorCodeUnderdetermined,
			"not enough rating signal, rate more games", err)
	case core.IsInvalidInput(err):
		msg := "invalid input"
		if de := core.GetDomainError(err); de != nil {
			msg = de.Message
		}
		respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, msg, err)
	case core.IsUnavailable(err):
		respondError(w, r, http.StatusServiceUnavailable, core.ErrorCodeUnavailable,
			"game catalog is temporarily unavailable", err)
	case core.IsDimensionMismatch(err):
		respondError(w, r, http.StatusInternalServerError, core.ErrorCodeDimensionMismatch,
			"internal error", err)
	default:
		respondError(w, r, http.StatusInternalServerError, core.ErrorCodeInternalError,
			"internal error", err)
	}
}
