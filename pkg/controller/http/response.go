package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/service/llm"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/secmon-lab/riskpilot/pkg/utils/errutil"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"github.com/secmon-lab/riskpilot/pkg/utils/safe"
)

const maxRequestBody = 1 << 20

// statusClientClosedRequest marks requests whose client went away before the
// handler finished
const statusClientClosedRequest = 499

// errBadRequest marks malformed request bodies and parameters
var errBadRequest = goerr.New("bad request")

// envelope is the shape of every /api response
type envelope struct {
	Data  any            `json:"data"`
	Error *errorBody     `json:"error"`
	Meta  map[string]any `json:"meta,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

func writeData(ctx context.Context, w http.ResponseWriter, statusCode int, data any, meta map[string]any) {
	writeJSON(ctx, w, statusCode, envelope{Data: data, Meta: meta})
}

var badRequestErrors = []error{
	errBadRequest,
	usecase.ErrInvalidInput,
	usecase.ErrAINotConfigured,
	model.ErrMissingRequired,
	model.ErrInvalidScore,
	model.ErrInvalidCategory,
	model.ErrInvalidStatus,
	model.ErrInvalidRole,
	model.ErrInvalidEmail,
	model.ErrDuplicateMember,
	model.ErrInvalidAIConfig,
	model.ErrFieldTooLong,
	llm.ErrNoProvider,
	llm.ErrUnknownProvider,
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, usecase.ErrUnauthenticated), errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrProjectNotFound), errors.Is(err, usecase.ErrRiskNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrInvalidResponse), errors.Is(err, llm.ErrGeneration):
		return http.StatusBadGateway
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes it in the envelope. Internal details of 5xx
// errors other than upstream AI failures are not exposed.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)

	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		_ = errutil.Handle(ctx, err, "request failed")
		msg = "internal server error"
	case status >= http.StatusInternalServerError:
		_ = errutil.Handle(ctx, err, "upstream AI request failed")
	case status == statusClientClosedRequest:
		logging.From(ctx).Info("request canceled by client", "error", err.Error())
	default:
		logging.From(ctx).Warn("request rejected", "status", status, "error", err.Error())
	}

	writeJSON(ctx, w, status, envelope{Error: &errorBody{Message: msg}})
}

// decodeJSON reads a JSON request body into v
func decodeJSON(r *http.Request, v any) error {
	defer safe.Close(r.Context(), r.Body)

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}
