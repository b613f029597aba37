package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"crewsite/internal/domain/payroll"
	"crewsite/internal/domain/worker"
	"crewsite/internal/general/jwt"
	"crewsite/internal/general/logger"
	"crewsite/internal/general/postgres"
	"crewsite/internal/ports"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PayrollHTTPHandler adapts HTTP requests to the PayrollService.
type PayrollHTTPHandler struct {
	svc    ports.PayrollService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewPayrollHTTPHandler wires an HTTP handler around the PayrollService.
func NewPayrollHTTPHandler(svc ports.PayrollService, logger *logger.Logger, auth *jwt.Manager) *PayrollHTTPHandler {
	return &PayrollHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts payroll endpoints on the provided mux. All payroll
// routes are manager-only.
func (handler *PayrollHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payroll/runs",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleRunPayroll),
	)
	mux.HandleFunc("GET /payroll/runs",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleListRuns),
	)
	mux.HandleFunc("GET /payroll/runs/{run_id}",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleGetRun),
	)
	mux.HandleFunc("GET /payroll/runs/{run_id}/export.csv",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleExportCSV),
	)
	mux.HandleFunc("GET /payroll/runs/{run_id}/export.xlsx",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleExportWorkbook),
	)

	mux.HandleFunc("GET /payroll/health", handler.handleHealth)
}

func (handler *PayrollHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse takes any type of data and encode it to HTTP response.
func (handler *PayrollHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *PayrollHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps payroll errors onto HTTP status codes.
func (handler *PayrollHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, payroll.ErrUnknownWorker):
		handler.httpError(ctx, w, http.StatusUnprocessableEntity, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *PayrollHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
