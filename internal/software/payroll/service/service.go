package service

import (
	"crewsite/internal/general/logger"
	"crewsite/internal/ports"
)

// payrollService holds all dependencies required by the Payroll service.
type payrollService struct {
	logger  *logger.Logger
	records ports.AttendanceRepository
	sites   ports.SiteRepository
	workers ports.WorkerRepository
	runs    ports.PayrollRunRepository
}

// NewPayrollService constructs the service with required dependencies.
func NewPayrollService(
	logger *logger.Logger,
	records ports.AttendanceRepository,
	sites ports.SiteRepository,
	workers ports.WorkerRepository,
	runs ports.PayrollRunRepository,
) ports.PayrollService {
	return &payrollService{
		logger:  logger,
		records: records,
		sites:   sites,
		workers: workers,
		runs:    runs,
	}
}
