package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crewsite/internal/domain/payroll"
	"crewsite/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PayrollRunRepo stores computed payroll batches. The batch body is kept as a
// JSONB document: runs are immutable snapshots, never queried per line item.
type PayrollRunRepo struct {
	pool *pgxpool.Pool
}

// NewPayrollRunRepo constructs a new PayrollRunRepo.
func NewPayrollRunRepo(pool *pgxpool.Pool) ports.PayrollRunRepository {
	return &PayrollRunRepo{pool: pool}
}

// SaveRun persists one computed batch and returns the generated run ID.
func (repo *PayrollRunRepo) SaveRun(ctx context.Context, managerID, siteID string, batch *payroll.Batch) (string, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("marshal payroll batch: %w", err)
	}

	runID := uuid.NewString()
	_, err = db(ctx, repo.pool).Exec(ctx, `
		INSERT INTO payroll_runs (
			id, manager_id, site_id,
			period_start, period_end, grand_total_pay,
			batch, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		runID, managerID, siteID,
		batch.PeriodStart, batch.PeriodEnd, batch.GrandTotalPay,
		body, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert payroll run: %w", err)
	}

	return runID, nil
}

// GetRun loads a stored batch by run ID.
func (repo *PayrollRunRepo) GetRun(ctx context.Context, runID string) (*payroll.Batch, error) {
	var body []byte

	err := db(ctx, repo.pool).QueryRow(ctx, `
		SELECT batch FROM payroll_runs WHERE id = $1
	`, runID).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payroll run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payroll run: %w", err)
	}

	var batch payroll.Batch
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal payroll batch: %w", err)
	}
	return &batch, nil
}

// ListRuns returns the manager's runs, newest first.
func (repo *PayrollRunRepo) ListRuns(ctx context.Context, managerID string) ([]ports.PayrollRunInfo, error) {
	rows, err := db(ctx, repo.pool).Query(ctx, `
		SELECT id, site_id, period_start, period_end, grand_total_pay, created_at
		FROM payroll_runs
		WHERE manager_id = $1
		ORDER BY created_at DESC
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("list payroll runs: %w", err)
	}
	defer rows.Close()

	var out []ports.PayrollRunInfo
	for rows.Next() {
		var info ports.PayrollRunInfo
		if err := rows.Scan(&info.RunID, &info.SiteID, &info.PeriodStart, &info.PeriodEnd, &info.GrandTotalPay, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payroll run: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
