package service

import (
	"context"

	"crewsite/internal/domain/geo"
	"crewsite/internal/domain/site"
	"crewsite/internal/ports"
)

// CreateSite registers a new job site with its geofence. A zero radius falls
// back to the configured default.
func (service *attendanceService) CreateSite(ctx context.Context, in ports.CreateSiteInput) (*site.Site, error) {
	center, err := geo.NewCoordinate(in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}

	radius := in.RadiusMeters
	if radius <= 0 {
		radius = service.cfg.Geofence.DefaultRadiusMeters
	}

	s, err := site.New(in.Name, in.Address, in.ManagerID, center, radius)
	if err != nil {
		return nil, err
	}

	if err := service.sites.Create(ctx, s); err != nil {
		service.logger.Error(ctx, "site_create_failed", "Failed to create site", err, map[string]any{
			"manager_id": in.ManagerID,
			"name":       in.Name,
		})
		return nil, err
	}

	service.logger.Info(ctx, "site_created", "Job site created", map[string]any{
		"site_id":    s.ID,
		"manager_id": s.ManagerID,
		"radius_m":   s.RadiusMeters,
	})

	return s, nil
}

// GetSite fetches one site.
func (service *attendanceService) GetSite(ctx context.Context, siteID string) (*site.Site, error) {
	return service.sites.GetByID(ctx, siteID)
}

// AssignWorker adds a worker to the site's crew roster.
func (service *attendanceService) AssignWorker(ctx context.Context, siteID, workerID string) (*site.Site, error) {
	s, err := service.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	// the worker must have a pay profile before joining a crew
	if _, err := service.workers.GetProfile(ctx, workerID); err != nil {
		return nil, err
	}

	if err := s.AssignWorker(workerID); err != nil {
		return nil, err
	}
	if err := service.sites.Update(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "worker_assigned", "Worker assigned to site crew", map[string]any{
		"site_id":   siteID,
		"worker_id": workerID,
		"crew_size": len(s.Crew),
	})

	return s, nil
}

// RemoveWorker drops a worker from the site's crew roster.
func (service *attendanceService) RemoveWorker(ctx context.Context, siteID, workerID string) (*site.Site, error) {
	s, err := service.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if err := s.RemoveWorker(workerID); err != nil {
		return nil, err
	}
	if err := service.sites.Update(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "worker_removed", "Worker removed from site crew", map[string]any{
		"site_id":   siteID,
		"worker_id": workerID,
		"crew_size": len(s.Crew),
	})

	return s, nil
}
