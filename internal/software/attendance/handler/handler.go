package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/geo"
	"crewsite/internal/domain/site"
	"crewsite/internal/domain/worker"
	"crewsite/internal/general/jwt"
	"crewsite/internal/general/logger"
	"crewsite/internal/general/postgres"
	"crewsite/internal/general/websocket"
	"crewsite/internal/ports"
	"crewsite/internal/software/attendance/service"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AttendanceHTTPHandler adapts HTTP requests to the AttendanceService.
type AttendanceHTTPHandler struct {
	svc    ports.AttendanceService
	logger *logger.Logger
	auth   *jwt.Manager
	feed   *websocket.Feed
}

// NewAttendanceHTTPHandler wires an HTTP handler around the AttendanceService.
func NewAttendanceHTTPHandler(
	svc ports.AttendanceService,
	logger *logger.Logger,
	auth *jwt.Manager,
	feed *websocket.Feed,
) *AttendanceHTTPHandler {
	return &AttendanceHTTPHandler{svc: svc, logger: logger, auth: auth, feed: feed}
}

// RegisterRoutes mounts attendance endpoints on the provided mux.
func (handler *AttendanceHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /workers/{worker_id}/clock-in",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker)(handler.handleClockIn),
	)
	mux.HandleFunc("POST /workers/{worker_id}/clock-out",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker)(handler.handleClockOut),
	)
	mux.HandleFunc("GET /workers/{worker_id}/attendance",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker, worker.RoleManager)(handler.handleHistory),
	)
	mux.HandleFunc("GET /workers/{worker_id}/attendance/today",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker, worker.RoleManager)(handler.handleTodayRecord),
	)

	mux.HandleFunc("POST /workers/{worker_id}/reports",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker)(handler.handleSubmitReport),
	)
	mux.HandleFunc("GET /workers/{worker_id}/reports",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker, worker.RoleManager)(handler.handleReportHistory),
	)
	mux.HandleFunc("GET /workers/{worker_id}/reports/today",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker, worker.RoleManager)(handler.handleTodayReport),
	)
	mux.HandleFunc("GET /workers/{worker_id}/reports/missing",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker, worker.RoleManager)(handler.handleMissingReport),
	)

	mux.HandleFunc("POST /sites",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleCreateSite),
	)
	mux.HandleFunc("GET /sites/{site_id}",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleWorker, worker.RoleManager)(handler.handleGetSite),
	)
	mux.HandleFunc("POST /sites/{site_id}/crew",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleAssignWorker),
	)
	mux.HandleFunc("DELETE /sites/{site_id}/crew/{worker_id}",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleRemoveWorker),
	)
	mux.HandleFunc("GET /sites/{site_id}/attendance",
		jwt.AuthMiddlewareFunc(handler.auth, worker.RoleManager)(handler.handleCrewAttendance),
	)

	// WebSocket authenticates via its own first frame
	mux.HandleFunc("GET /ws/feed/{manager_id}", handler.feed.ConnectManager)

	mux.HandleFunc("GET /attendance/health", handler.handleHealth)
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

// ----- general helpers -----

type TokenRequest struct {
	UserID string      `json:"user_id"`
	Role   worker.Role `json:"role"`
}

type TokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	UserID    string      `json:"user_id"`
	Role      worker.Role `json:"role"`
}

// handleCreateToken generates JWT tokens for testing
func (handler *AttendanceHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	tokenString, claims, err := handler.auth.IssueUserToken(req.UserID, req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	response := TokenResponse{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    req.UserID,
		Role:      req.Role,
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"user_id": req.UserID, "role": req.Role.String()})

	handler.jsonResponse(ctx, w, http.StatusCreated, response)
}

func (handler *AttendanceHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse takes any type of data and encode it to HTTP response.
func (handler *AttendanceHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
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
func (handler *AttendanceHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusUnsupportedMediaType {
		action = "unsupported_media_type"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps domain sentinels onto HTTP status codes.
func (handler *AttendanceHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, attendance.ErrShiftAlreadyOpen),
		errors.Is(err, attendance.ErrNoOpenShift),
		errors.Is(err, service.ErrReportExists),
		errors.Is(err, site.ErrAlreadyAssigned):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, service.ErrRecordOwnership):
		handler.httpError(ctx, w, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, site.ErrNotAssigned):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, geo.ErrInvalidLatitude),
		errors.Is(err, geo.ErrInvalidLongitude),
		errors.Is(err, geo.ErrInvalidRadius),
		errors.Is(err, attendance.ErrInvalidTimestamp),
		errors.Is(err, attendance.ErrWorkerRequired),
		errors.Is(err, attendance.ErrSiteRequired),
		errors.Is(err, site.ErrNameRequired),
		errors.Is(err, site.ErrManagerRequired):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

// decodeStrict decodes a JSON body with unknown fields rejected and a 1 MiB cap.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *AttendanceHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
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

// parseRange reads optional from/to query params (RFC 3339), defaulting to the
// last 30 days.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	return from, to, nil
}
