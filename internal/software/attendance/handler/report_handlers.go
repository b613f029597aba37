package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"crewsite/internal/ports"
)

type submitReportRequest struct {
	SiteID          string   `json:"site_id" validate:"required"`
	HoursWorked     float64  `json:"hours_worked" validate:"min=0,max=24"`
	ProgressMade    string   `json:"progress_made" validate:"required"`
	MaterialsNeeded string   `json:"materials_needed,omitempty"`
	Issues          []string `json:"issues,omitempty" validate:"max=20,dive,max=500"`
}

// ----- Handler: POST /workers/{worker_id}/reports -----

func (handler *AttendanceHTTPHandler) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	workerID, ok := handler.subjectFromPath(ctx, w, r)
	if !ok {
		return
	}

	var req submitReportRequest
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
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid report payload", err)
		return
	}

	in := ports.SubmitReportInput{
		WorkerID:        workerID,
		SiteID:          req.SiteID,
		HoursWorked:     req.HoursWorked,
		ProgressMade:    req.ProgressMade,
		MaterialsNeeded: req.MaterialsNeeded,
		Issues:          req.Issues,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.SubmitReport(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}

// ----- Handler: GET /workers/{worker_id}/reports -----

func (handler *AttendanceHTTPHandler) handleReportHistory(w http.ResponseWriter, r *http.Request) {
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

	reports, err := handler.svc.ReportHistory(ctx, workerID, from, to)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"worker_id": workerID,
		"reports":   reports,
		"count":     len(reports),
	})
}

// ----- Handler: GET /workers/{worker_id}/reports/today -----

func (handler *AttendanceHTTPHandler) handleTodayReport(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	workerID := strings.TrimSpace(r.PathValue("worker_id"))
	siteID := strings.TrimSpace(r.URL.Query().Get("site_id"))
	if workerID == "" || siteID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "worker_id path segment and site_id query param are required", nil)
		return
	}

	report, err := handler.svc.TodayReport(ctx, workerID, siteID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	if report == nil {
		handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"submitted": false})
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"submitted": true,
		"report":    report,
	})
}

// ----- Handler: GET /workers/{worker_id}/reports/missing -----

func (handler *AttendanceHTTPHandler) handleMissingReport(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	workerID := strings.TrimSpace(r.PathValue("worker_id"))
	siteID := strings.TrimSpace(r.URL.Query().Get("site_id"))
	if workerID == "" || siteID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "worker_id path segment and site_id query param are required", nil)
		return
	}

	missing, err := handler.svc.MissingReport(ctx, workerID, siteID, time.Now())
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"worker_id": workerID,
		"site_id":   siteID,
		"missing":   missing,
	})
}
