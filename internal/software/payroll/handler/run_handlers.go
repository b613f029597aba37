package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crewsite/internal/general/jwt"
	"crewsite/internal/ports"
)

type runPayrollRequest struct {
	SiteID      string    `json:"site_id" validate:"required"`
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
	Persist     bool      `json:"persist,omitempty"`
}

// ----- Handler: POST /payroll/runs -----

func (handler *PayrollHTTPHandler) handleRunPayroll(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req runPayrollRequest
	if err := dec.Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid payroll request", err)
		return
	}

	in := ports.RunPayrollInput{
		ManagerID:   claims.Subject,
		SiteID:      req.SiteID,
		PeriodStart: req.PeriodStart.UTC(),
		PeriodEnd:   req.PeriodEnd.UTC(),
		Persist:     req.Persist,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := handler.svc.RunPayroll(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	status := http.StatusOK
	if res.RunID != "" {
		status = http.StatusCreated
	}
	handler.jsonResponse(ctxWithTimeout, w, status, res)
}

// ----- Handler: GET /payroll/runs -----

func (handler *PayrollHTTPHandler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	runs, err := handler.svc.ListRuns(ctx, claims.Subject)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// ----- Handler: GET /payroll/runs/{run_id} -----

func (handler *PayrollHTTPHandler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	runID := strings.TrimSpace(r.PathValue("run_id"))
	if runID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing run_id in path", nil)
		return
	}

	batch, err := handler.svc.GetRun(ctx, runID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, batch)
}

// ----- Handler: GET /payroll/runs/{run_id}/export.csv -----

func (handler *PayrollHTTPHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	runID := strings.TrimSpace(r.PathValue("run_id"))
	if runID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing run_id in path", nil)
		return
	}

	out, err := handler.svc.ExportCSV(ctx, runID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll_%s.csv"`, runID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// ----- Handler: GET /payroll/runs/{run_id}/export.xlsx -----

func (handler *PayrollHTTPHandler) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	runID := strings.TrimSpace(r.PathValue("run_id"))
	if runID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing run_id in path", nil)
		return
	}

	f, err := handler.svc.ExportWorkbook(ctx, runID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll_%s.xlsx"`, runID))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		handler.logger.Error(ctx, "workbook_stream_failed", "Failed to stream workbook", err, map[string]any{
			"run_id": runID,
		})
	}
}
