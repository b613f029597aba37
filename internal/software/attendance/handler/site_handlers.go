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

type createSiteRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Address      string  `json:"address,omitempty" validate:"max=500"`
	Latitude     float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude    float64 `json:"longitude" validate:"min=-180,max=180"`
	RadiusMeters float64 `json:"radius_meters,omitempty" validate:"min=0,max=100000"`
}

type assignWorkerRequest struct {
	WorkerID string `json:"worker_id" validate:"required"`
}

// ----- Handler: POST /sites -----

func (handler *AttendanceHTTPHandler) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	var req createSiteRequest
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
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid site payload", err)
		return
	}

	in := ports.CreateSiteInput{
		ManagerID:    claims.Subject,
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s, err := handler.svc.CreateSite(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, s)
}

// ----- Handler: GET /sites/{site_id} -----

func (handler *AttendanceHTTPHandler) handleGetSite(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	siteID := strings.TrimSpace(r.PathValue("site_id"))
	if siteID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing site_id in path", nil)
		return
	}

	s, err := handler.svc.GetSite(ctx, siteID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, s)
}

// ----- Handler: POST /sites/{site_id}/crew -----

func (handler *AttendanceHTTPHandler) handleAssignWorker(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	siteID := strings.TrimSpace(r.PathValue("site_id"))
	if siteID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing site_id in path", nil)
		return
	}

	var req assignWorkerRequest
	if err := decodeStrict(w, r, &req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid crew payload", err)
		return
	}

	s, err := handler.svc.AssignWorker(ctx, siteID, req.WorkerID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, s)
}

// ----- Handler: DELETE /sites/{site_id}/crew/{worker_id} -----

func (handler *AttendanceHTTPHandler) handleRemoveWorker(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	siteID := strings.TrimSpace(r.PathValue("site_id"))
	workerID := strings.TrimSpace(r.PathValue("worker_id"))
	if siteID == "" || workerID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing site_id or worker_id in path", nil)
		return
	}

	s, err := handler.svc.RemoveWorker(ctx, siteID, workerID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, s)
}

// ----- Handler: GET /sites/{site_id}/attendance -----

func (handler *AttendanceHTTPHandler) handleCrewAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	siteID := strings.TrimSpace(r.PathValue("site_id"))
	if siteID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing site_id in path", nil)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid from/to range", err)
		return
	}

	records, err := handler.svc.CrewAttendance(ctx, siteID, from, to)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"site_id": siteID,
		"records": records,
		"count":   len(records),
	})
}
