package handler

import "animal-care-clinic/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Veterinarian *VeterinarianHandler
	Owner        *OwnerHandler
	Animal       *AnimalHandler
	Schedule     *ScheduleHandler
	Appointment  *AppointmentHandler
	VisitHistory *VisitHistoryHandler
	Report       *ReportHandler
	Calendar     *CalendarHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Veterinarian: NewVeterinarianHandler(svc.Veterinarian),
		Owner:        NewOwnerHandler(svc.Owner),
		Animal:       NewAnimalHandler(svc.Animal),
		Schedule:     NewScheduleHandler(svc.Schedule),
		Appointment:  NewAppointmentHandler(svc.Appointment),
		VisitHistory: NewVisitHistoryHandler(svc.VisitHistory),
		Report:       NewReportHandler(svc.Report),
		Calendar:     NewCalendarHandler(svc.Calendar),
	}
}
