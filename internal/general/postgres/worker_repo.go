package postgres

import (
	"context"
	"errors"
	"fmt"

	"crewsite/internal/domain/worker"
	"crewsite/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkerRepo resolves pay profiles from the workers table.
type WorkerRepo struct {
	pool *pgxpool.Pool
}

// NewWorkerRepo constructs a new WorkerRepo.
func NewWorkerRepo(pool *pgxpool.Pool) ports.WorkerRepository {
	return &WorkerRepo{pool: pool}
}

// GetProfile fetches one worker's pay profile.
func (repo *WorkerRepo) GetProfile(ctx context.Context, workerID string) (*worker.PayProfile, error) {
	var (
		out  worker.PayProfile
		role string
	)

	err := db(ctx, repo.pool).QueryRow(ctx, `
		SELECT id, display_name, hourly_rate, role, phone, created_at
		FROM workers
		WHERE id = $1
	`, workerID).Scan(
		&out.WorkerID, &out.DisplayName, &out.HourlyRate, &role, &out.Phone, &out.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("worker %s: %w", workerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get worker profile: %w", err)
	}

	out.Role, _ = worker.ParseRole(role)

	return &out, nil
}

// GetProfiles fetches pay profiles in bulk. The result contains only the IDs
// that exist; the caller decides whether a gap is an error.
func (repo *WorkerRepo) GetProfiles(ctx context.Context, workerIDs []string) (map[string]*worker.PayProfile, error) {
	out := make(map[string]*worker.PayProfile, len(workerIDs))
	if len(workerIDs) == 0 {
		return out, nil
	}

	rows, err := db(ctx, repo.pool).Query(ctx, `
		SELECT id, display_name, hourly_rate, role, phone, created_at
		FROM workers
		WHERE id = ANY($1)
	`, workerIDs)
	if err != nil {
		return nil, fmt.Errorf("get worker profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p    worker.PayProfile
			role string
		)
		if err := rows.Scan(&p.WorkerID, &p.DisplayName, &p.HourlyRate, &role, &p.Phone, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan worker profile: %w", err)
		}
		p.Role, _ = worker.ParseRole(role)
		out[p.WorkerID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
