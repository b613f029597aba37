package postgres

import (
	"context"
	"errors"
	"fmt"

	"crewsite/internal/domain/site"
	"crewsite/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SiteRepo persists job sites and their crew rosters.
type SiteRepo struct {
	pool *pgxpool.Pool
}

// NewSiteRepo constructs a new SiteRepo.
func NewSiteRepo(pool *pgxpool.Pool) ports.SiteRepository {
	return &SiteRepo{pool: pool}
}

// Create inserts a new site. The ID is generated here when the domain entity
// has none yet.
func (repo *SiteRepo) Create(ctx context.Context, s *site.Site) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	_, err := db(ctx, repo.pool).Exec(ctx, `
		INSERT INTO sites (
			id, name, address,
			center_lat, center_lng, radius_m,
			manager_id, crew, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		s.ID, s.Name, s.Address,
		s.Center.Latitude, s.Center.Longitude, s.RadiusMeters,
		s.ManagerID, s.Crew, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert site: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns, crew roster included.
func (repo *SiteRepo) Update(ctx context.Context, s *site.Site) error {
	tag, err := db(ctx, repo.pool).Exec(ctx, `
		UPDATE sites
		SET name = $2, address = $3,
		    center_lat = $4, center_lng = $5, radius_m = $6,
		    crew = $7, updated_at = $8
		WHERE id = $1
	`,
		s.ID, s.Name, s.Address,
		s.Center.Latitude, s.Center.Longitude, s.RadiusMeters,
		s.Crew, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("site %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

// GetByID fetches one site by its ID.
func (repo *SiteRepo) GetByID(ctx context.Context, siteID string) (*site.Site, error) {
	var out site.Site

	err := db(ctx, repo.pool).QueryRow(ctx, `
		SELECT
			id, name, address,
			center_lat, center_lng, radius_m,
			manager_id, crew, created_at, updated_at
		FROM sites
		WHERE id = $1
	`, siteID).Scan(
		&out.ID, &out.Name, &out.Address,
		&out.Center.Latitude, &out.Center.Longitude, &out.RadiusMeters,
		&out.ManagerID, &out.Crew, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("site %s: %w", siteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get site: %w", err)
	}

	return &out, nil
}
