package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"todam/internal/usecase"
)

// Response is the Lambda proxy response shape shared by every entrypoint.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func jsonResponse(status int, correlationID string, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal response body", "err", err)
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    responseHeaders("application/json", correlationID),
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}
	}
	return Response{
		StatusCode: status,
		Headers:    responseHeaders("application/json", correlationID),
		Body:       string(body),
	}
}

func textResponse(status int, correlationID, body string) Response {
	return Response{
		StatusCode: status,
		Headers:    responseHeaders("text/plain", correlationID),
		Body:       body,
	}
}

func responseHeaders(contentType, correlationID string) map[string]string {
	h := map[string]string{"Content-Type": contentType}
	if correlationID != "" {
		h["X-Correlation-Id"] = correlationID
	}
	return h
}

// correlationID returns the caller-provided X-Correlation-Id, or mints one.
// Header lookup is case-insensitive because API Gateway forwards headers
// as the client sent them.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == "X-Correlation-Id" && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// statusFor maps a service error code to an HTTP status.
func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorBadInput, usecase.ErrorInvalidCode:
		return http.StatusBadRequest
	case usecase.ErrorForbidden:
		return http.StatusForbidden
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorExpired:
		return http.StatusGone
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders a service error. Unrecognized errors become opaque
// internal failures.
func respondError(correlationID string, err error) Response {
	var svcErr *usecase.Error
	if errors.As(err, &svcErr) {
		slog.Error("request failed", "code", string(svcErr.Code), "reason", svcErr.Reason, "err", err)
		return jsonResponse(statusFor(svcErr.Code), correlationID, errorResponse{
			Error:  string(svcErr.Code),
			Reason: svcErr.Reason,
		})
	}
	slog.Error("request failed", "err", err)
	return jsonResponse(http.StatusInternalServerError, correlationID, errorResponse{
		Error: string(usecase.ErrorInternal),
	})
}
