package service

import (
	"crewsite/internal/general/config"
	"crewsite/internal/general/logger"
	"crewsite/internal/general/rabbitmq"
	"crewsite/internal/general/websocket"
	"crewsite/internal/ports"
)

// attendanceService holds all dependencies required by the Attendance service.
type attendanceService struct {
	logger   *logger.Logger
	cfg      *config.Config
	uow      ports.UnitOfWork
	records  ports.AttendanceRepository
	sites    ports.SiteRepository
	workers  ports.WorkerRepository
	reports  ports.ReportRepository
	pub      *rabbitmq.MQPublisher
	rabbitmq *rabbitmq.Client
	feed     *websocket.Feed
}

// NewAttendanceService constructs the service with required dependencies.
func NewAttendanceService(
	logger *logger.Logger,
	cfg *config.Config,
	uow ports.UnitOfWork,
	records ports.AttendanceRepository,
	sites ports.SiteRepository,
	workers ports.WorkerRepository,
	reports ports.ReportRepository,
	pub *rabbitmq.MQPublisher,
	rabbitmq *rabbitmq.Client,
	feed *websocket.Feed,
) ports.AttendanceService {
	return &attendanceService{
		logger:   logger,
		cfg:      cfg,
		uow:      uow,
		records:  records,
		sites:    sites,
		workers:  workers,
		reports:  reports,
		pub:      pub,
		rabbitmq: rabbitmq,
		feed:     feed,
	}
}
