package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/riskibarqy/floorball-league/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "floorball-league"

	internalErrorMessage = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorMapping struct {
	target     error
	httpStatus int
	reason     string
	status     string
}

var (
	errorMappings = []errorMapping{
		{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
		{usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
		{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
		{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
	}
	internalMapping = errorMapping{httpStatus: http.StatusInternalServerError, reason: "internalError", status: "INTERNAL"}
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// writeError maps err onto the envelope. Unmapped errors are logged and
// answered with a generic message so storage details never reach clients.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped, ok := mapError(err)
	if !ok {
		logging.Default().ErrorContext(ctx, "request failed", "error", err)
		writeErrorBody(w, mapped, internalErrorMessage)
		return
	}
	writeErrorBody(w, mapped, err.Error())
}

func writeInternalError(_ context.Context, w http.ResponseWriter) {
	writeErrorBody(w, internalMapping, internalErrorMessage)
}

func writeErrorBody(w http.ResponseWriter, mapped errorMapping, message string) {
	writeJSON(w, mapped.httpStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.httpStatus,
			Message: message,
			Status:  mapped.status,
			Errors: []googleErrorItem{{
				Domain:  errorDomain,
				Reason:  mapped.reason,
				Message: message,
			}},
		},
	})
}

func mapError(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return internalMapping, false
}
