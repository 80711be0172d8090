package service

import (
	"go.uber.org/zap"

	"animal-care-clinic/config"
	"animal-care-clinic/internal/repository"
	"animal-care-clinic/pkg/jwt"
	"animal-care-clinic/pkg/metrics"
	"animal-care-clinic/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Veterinarian VeterinarianService
	Owner        OwnerService
	Animal       AnimalService
	Schedule     ScheduleService
	Appointment  AppointmentService
	VisitHistory VisitHistoryService
	Report       ReportService
	Calendar     CalendarService
}

// NewService 创建 Service 聚合；rdb 与 collector 均可为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Service {
	var blacklist TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	loc := cfg.Clinic.Location()

	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, blacklist, logger),
		Veterinarian: NewVeterinarianService(repo, logger),
		Owner:        NewOwnerService(repo, logger),
		Animal:       NewAnimalService(repo, logger),
		Schedule:     NewScheduleService(repo, collector, logger),
		Appointment:  NewAppointmentService(repo, collector, logger),
		VisitHistory: NewVisitHistoryService(repo, logger),
		Report:       NewReportService(repo, loc, logger),
		Calendar:     NewCalendarService(repo, loc, logger),
	}
}
