package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"crewsite/internal/general/jwt"
	"crewsite/internal/ports"
)

// --- Request DTOs (HTTP boundary) ---

type clockInRequest struct {
	SiteID    string  `json:"site_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	PhotoURL  string  `json:"photo_url,omitempty" validate:"omitempty,url"`
}

type clockOutRequest struct {
	RecordID  string  `json:"record_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// ----- Handler: POST /workers/{worker_id}/clock-in -----

func (handler *AttendanceHTTPHandler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	workerID, ok := handler.subjectFromPath(ctx, w, r)
	if !ok {
		return
	}

	var req clockInRequest
	if err := decodeStrict(w, r, &req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid clock-in payload", err)
		return
	}

	in := ports.ClockInInput{
		WorkerID:  workerID,
		SiteID:    req.SiteID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		PhotoURL:  req.PhotoURL,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.ClockIn(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}

// ----- Handler: POST /workers/{worker_id}/clock-out -----

func (handler *AttendanceHTTPHandler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	workerID, ok := handler.subjectFromPath(ctx, w, r)
	if !ok {
		return
	}

	var req clockOutRequest
	if err := decodeStrict(w, r, &req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid clock-out payload", err)
		return
	}

	in := ports.ClockOutInput{
		WorkerID:  workerID,
		RecordID:  req.RecordID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.ClockOut(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- Handler: GET /workers/{worker_id}/attendance -----

func (handler *AttendanceHTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	workerID := strings.TrimSpace(r.PathValue("worker_id"))
	if workerID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing worker_id in path", nil)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid from/to range", err)
		return
	}

	records, err := handler.svc.History(ctx, workerID, from, to)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"worker_id": workerID,
		"records":   records,
		"count":     len(records),
	})
}

// ----- Handler: GET /workers/{worker_id}/attendance/today -----

func (handler *AttendanceHTTPHandler) handleTodayRecord(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	workerID := strings.TrimSpace(r.PathValue("worker_id"))
	siteID := strings.TrimSpace(r.URL.Query().Get("site_id"))
	if workerID == "" || siteID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "worker_id path segment and site_id query param are required", nil)
		return
	}

	record, err := handler.svc.TodayRecord(ctx, workerID, siteID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	if record == nil {
		handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"clocked_in": false})
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"clocked_in": true,
		"record":     record,
		"open":       record.Open(),
	})
}

// subjectFromPath reads worker_id from the path and checks it against the JWT
// subject so a worker can only act on their own shifts.
func (handler *AttendanceHTTPHandler) subjectFromPath(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	workerID := strings.TrimSpace(r.PathValue("worker_id"))
	if workerID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing worker_id in path", nil)
		return "", false
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return "", false
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" || sub != workerID {
		handler.httpError(ctx, w, http.StatusForbidden, "worker_id does not match token subject", errors.New("worker/token mismatch"))
		return "", false
	}
	return workerID, true
}
