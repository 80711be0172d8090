package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"animal-care-clinic/internal/clinichours"
	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
	pkgerrors "animal-care-clinic/pkg/errors"
	"animal-care-clinic/pkg/metrics"
)

// ── 预约模块业务错误 ──

var (
	ErrAppointmentNotFound  = errors.New("预约不存在")
	ErrAppointmentImmutable = errors.New("已取消或已完成的预约不可修改")
	ErrAppointmentHasVisits = errors.New("预约已有就诊记录，无法删除")
)

// 预约操作名，用于链路与指标
const (
	opBook       = "book"
	opReschedule = "reschedule"
	opCancel     = "cancel"
	opComplete   = "complete"
	opDelete     = "delete"
)

var tracer = otel.Tracer("animal-care-clinic/internal/service")

// AppointmentService 预约业务接口
// 预约与时段的状态变更均在单个事务中完成，时段行以 FOR UPDATE 锁定
type AppointmentService interface {
	Book(ctx context.Context, req *dto.BookAppointmentRequest, callerID int64) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, id int64, req *dto.RescheduleAppointmentRequest, callerID int64) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id int64, callerID int64) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, id int64, callerID int64) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, id int64, callerID int64) error
	GetByID(ctx context.Context, id int64) (*dto.AppointmentResponse, error)
	List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error)
}

type appointmentService struct {
	repo    *repository.Repository
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewAppointmentService 创建 AppointmentService 实例；collector 可为 nil
func NewAppointmentService(repo *repository.Repository, collector *metrics.Collector, logger *zap.Logger) AppointmentService {
	return &appointmentService{repo: repo, metrics: collector, logger: logger}
}

// ────────────────────── Book ──────────────────────

// Book 预约 Available 时段：创建 Booked 预约并将时段置为 Booked
// 检查顺序：时段存在 → 可预约 → 兽医一致 → 营业时间
func (s *appointmentService) Book(ctx context.Context, req *dto.BookAppointmentRequest, callerID int64) (resp *dto.AppointmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Book", trace.WithAttributes(
		attribute.Int64("schedule.id", req.ScheduleID),
		attribute.Int64("animal.id", req.AnimalID),
	))
	defer func() { s.finish(span, opBook, err) }()

	req.Reason = strings.TrimSpace(req.Reason)
	if err = s.validate(ctx, req, req.AnimalID); err != nil {
		return nil, err
	}

	var appt *model.Appointment
	err = s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		schedule, err := lockBookableSchedule(ctx, txRepo, req.ScheduleID, req.VeterinarianID)
		if err != nil {
			return err
		}

		appt = &model.Appointment{
			AnimalID: req.AnimalID,
			Reason:   req.Reason,
			Status:   model.AppointmentBooked,
		}
		appt.SyncFromSchedule(schedule)
		appt.CreatedBy = &callerID
		appt.UpdatedBy = &callerID
		if err := txRepo.Appointment.Create(ctx, appt); err != nil {
			return err
		}

		schedule.Status = model.ScheduleBooked
		schedule.UpdatedBy = &callerID
		if err := txRepo.Schedule.Update(ctx, schedule); err != nil {
			return err
		}
		appt.Schedule = schedule
		return nil
	})
	if err != nil {
		err = s.mapTxError(err)
		if !isBusinessError(err) {
			s.logger.Error("预约失败", zap.Int64("schedule_id", req.ScheduleID), zap.Error(err))
		}
		return nil, err
	}

	return s.reload(ctx, appt)
}

// ────────────────────── Reschedule ──────────────────────

// Reschedule 修改预约；ScheduleID 变化时原时段释放、新时段占用，否则仅更新动物与事由
func (s *appointmentService) Reschedule(ctx context.Context, id int64, req *dto.RescheduleAppointmentRequest, callerID int64) (resp *dto.AppointmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Reschedule", trace.WithAttributes(
		attribute.Int64("appointment.id", id),
		attribute.Int64("schedule.id", req.ScheduleID),
	))
	defer func() { s.finish(span, opReschedule, err) }()

	req.Reason = strings.TrimSpace(req.Reason)
	if err = s.validate(ctx, req, req.AnimalID); err != nil {
		return nil, err
	}

	var appt *model.Appointment
	err = s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		var err error
		appt, err = lockMutableAppointment(ctx, txRepo, id)
		if err != nil {
			return err
		}
		if req.Version > 0 && req.Version != appt.Version {
			return ErrConcurrencyConflict
		}

		if req.ScheduleID == appt.ScheduleID {
			schedule, err := lockSchedule(ctx, txRepo, appt.ScheduleID)
			if err != nil {
				return err
			}
			if schedule.VeterinarianID != req.VeterinarianID {
				return ErrVeterinarianMismatch
			}
			if schedule.Status != model.ScheduleBooked {
				schedule.Status = model.ScheduleBooked
				schedule.UpdatedBy = &callerID
				if err := txRepo.Schedule.Update(ctx, schedule); err != nil {
					return err
				}
			}
			appt.SyncFromSchedule(schedule)
		} else {
			oldSchedule, newSchedule, err := lockSchedulePair(ctx, txRepo, appt.ScheduleID, req.ScheduleID, req.VeterinarianID)
			if err != nil {
				return err
			}
			if err := releaseSchedule(ctx, txRepo, oldSchedule, appt.ID, callerID); err != nil {
				return err
			}
			newSchedule.Status = model.ScheduleBooked
			newSchedule.UpdatedBy = &callerID
			if err := txRepo.Schedule.Update(ctx, newSchedule); err != nil {
				return err
			}
			appt.SyncFromSchedule(newSchedule)
		}

		appt.AnimalID = req.AnimalID
		appt.Reason = req.Reason
		appt.UpdatedBy = &callerID
		return txRepo.Appointment.Update(ctx, appt)
	})
	if err != nil {
		err = s.mapTxError(err)
		if !isBusinessError(err) {
			s.logger.Error("改约失败", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.reload(ctx, appt)
}

// ────────────────────── Cancel ──────────────────────

// Cancel 取消预约并释放时段；重复取消直接返回当前状态
func (s *appointmentService) Cancel(ctx context.Context, id int64, callerID int64) (resp *dto.AppointmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Cancel", trace.WithAttributes(
		attribute.Int64("appointment.id", id),
	))
	defer func() { s.finish(span, opCancel, err) }()

	var appt *model.Appointment
	err = s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		var err error
		appt, err = lockAppointment(ctx, txRepo, id)
		if err != nil {
			return err
		}
		switch appt.Status {
		case model.AppointmentCancelled:
			return nil
		case model.AppointmentCompleted:
			return ErrAppointmentImmutable
		}

		schedule, err := lockSchedule(ctx, txRepo, appt.ScheduleID)
		if err != nil {
			return err
		}

		appt.Status = model.AppointmentCancelled
		appt.UpdatedBy = &callerID
		if err := txRepo.Appointment.Update(ctx, appt); err != nil {
			return err
		}
		return releaseSchedule(ctx, txRepo, schedule, appt.ID, callerID)
	})
	if err != nil {
		err = s.mapTxError(err)
		if !isBusinessError(err) {
			s.logger.Error("取消预约失败", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.reload(ctx, appt)
}

// ────────────────────── Complete ──────────────────────

// Complete 完成预约，时段置为 Completed 不再复用；重复完成直接返回当前状态
func (s *appointmentService) Complete(ctx context.Context, id int64, callerID int64) (resp *dto.AppointmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Complete", trace.WithAttributes(
		attribute.Int64("appointment.id", id),
	))
	defer func() { s.finish(span, opComplete, err) }()

	var appt *model.Appointment
	err = s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		var err error
		appt, err = lockAppointment(ctx, txRepo, id)
		if err != nil {
			return err
		}
		switch appt.Status {
		case model.AppointmentCompleted:
			return nil
		case model.AppointmentCancelled:
			return ErrAppointmentImmutable
		}

		schedule, err := lockSchedule(ctx, txRepo, appt.ScheduleID)
		if err != nil {
			return err
		}

		appt.Status = model.AppointmentCompleted
		appt.UpdatedBy = &callerID
		if err := txRepo.Appointment.Update(ctx, appt); err != nil {
			return err
		}

		schedule.Status = model.ScheduleCompleted
		schedule.UpdatedBy = &callerID
		return txRepo.Schedule.Update(ctx, schedule)
	})
	if err != nil {
		err = s.mapTxError(err)
		if !isBusinessError(err) {
			s.logger.Error("完成预约失败", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.reload(ctx, appt)
}

// ────────────────────── Delete ──────────────────────

// Delete 删除预约并将时段释放为 Available（时段被其他有效预约占用时除外）
func (s *appointmentService) Delete(ctx context.Context, id int64, callerID int64) (err error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Delete", trace.WithAttributes(
		attribute.Int64("appointment.id", id),
	))
	defer func() { s.finish(span, opDelete, err) }()

	err = s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		appt, err := lockAppointment(ctx, txRepo, id)
		if err != nil {
			return err
		}

		visits, err := txRepo.VisitHistory.CountByAppointment(ctx, id)
		if err != nil {
			return err
		}
		if visits > 0 {
			return ErrAppointmentHasVisits
		}

		schedule, err := lockSchedule(ctx, txRepo, appt.ScheduleID)
		if err != nil {
			return err
		}
		if err := txRepo.Appointment.Delete(ctx, id); err != nil {
			return err
		}
		return releaseSchedule(ctx, txRepo, schedule, id, callerID)
	})
	if err != nil {
		err = s.mapTxError(err)
		if !isBusinessError(err) {
			s.logger.Error("删除预约失败", zap.Int64("id", id), zap.Error(err))
		}
	}
	return err
}

// ────────────────────── GetByID / List ──────────────────────

func (s *appointmentService) GetByID(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("查询预约失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

func (s *appointmentService) List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	req.Normalize()

	ve := &ValidationError{}
	filter := repository.AppointmentFilter{
		VeterinarianID: req.VeterinarianID,
		AnimalID:       req.AnimalID,
		Status:         req.Status,
		From:           parseOptionalDate(ve, "from", req.From),
		To:             parseOptionalDate(ve, "to", req.To),
		Page:           repository.Page{Offset: req.Offset(), Limit: req.PageSize},
	}
	if err := ve.Err(); err != nil {
		return nil, 0, err
	}

	appts, total, err := s.repo.Appointment.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出预约失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		result = append(result, *toAppointmentResponse(&appts[i]))
	}
	return result, total, nil
}

// ── 内部辅助方法 ──

// validate 字段规则与动物存在性一并累积
func (s *appointmentService) validate(ctx context.Context, req interface{}, animalID int64) error {
	ve := &ValidationError{}
	validateStruct(ve, req)

	if animalID > 0 {
		_, err := s.repo.Animal.GetByID(ctx, animalID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ve.Add("animal_id", "动物不存在")
		case err != nil:
			return err
		}
	}
	return ve.Err()
}

// mapTxError 活动预约唯一索引冲突说明时段已被并发预约占用
func (s *appointmentService) mapTxError(err error) error {
	if name, ok := pkgerrors.UniqueConstraint(err); ok && name == constraintLiveSchedule {
		return ErrScheduleNotAvailable
	}
	return err
}

// reload 事务提交后重新读取预约及其关联；读取失败时退回事务内的对象
func (s *appointmentService) reload(ctx context.Context, appt *model.Appointment) (*dto.AppointmentResponse, error) {
	full, err := s.repo.Appointment.GetByID(ctx, appt.ID)
	if err != nil {
		s.logger.Warn("重新读取预约失败", zap.Int64("id", appt.ID), zap.Error(err))
		return toAppointmentResponse(appt), nil
	}
	return toAppointmentResponse(full), nil
}

// finish 结束 span 并记录预约操作指标
func (s *appointmentService) finish(span trace.Span, op string, err error) {
	result := bookingResult(err)
	span.SetAttributes(attribute.String("booking.result", result))
	if err != nil {
		span.RecordError(err)
		if result == metrics.ResultError {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
	s.metrics.ObserveBooking(op, result)
}

func bookingResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrScheduleNotAvailable):
		return metrics.ResultConflict
	case isBusinessError(err):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

func lockAppointment(ctx context.Context, repo *repository.Repository, id int64) (*model.Appointment, error) {
	appt, err := repo.Appointment.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return appt, nil
}

func lockMutableAppointment(ctx context.Context, repo *repository.Repository, id int64) (*model.Appointment, error) {
	appt, err := lockAppointment(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if appt.IsFinal() {
		return nil, ErrAppointmentImmutable
	}
	return appt, nil
}

func lockSchedule(ctx context.Context, repo *repository.Repository, id int64) (*model.Schedule, error) {
	schedule, err := repo.Schedule.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

// lockBookableSchedule 锁定并检查目标时段可被 vetID 的预约占用
func lockBookableSchedule(ctx context.Context, repo *repository.Repository, scheduleID, vetID int64) (*model.Schedule, error) {
	schedule, err := lockSchedule(ctx, repo, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := checkBookable(schedule, vetID); err != nil {
		return nil, err
	}
	return schedule, nil
}

func checkBookable(schedule *model.Schedule, vetID int64) error {
	if !schedule.IsAvailable() {
		return ErrScheduleNotAvailable
	}
	if schedule.VeterinarianID != vetID {
		return ErrVeterinarianMismatch
	}
	if res := clinichours.Validate(schedule.Date, schedule.TimeSlot); !res.Valid {
		msgs := make([]string, 0, len(res.Violations))
		for _, v := range res.Violations {
			msgs = append(msgs, v.Message)
		}
		return fmt.Errorf("%w: %s", ErrOutsideClinicHours, strings.Join(msgs, "; "))
	}
	return nil
}

// lockSchedulePair 按 id 升序锁定新旧两个时段，避免并发改约互相等待
func lockSchedulePair(ctx context.Context, repo *repository.Repository, oldID, newID, vetID int64) (*model.Schedule, *model.Schedule, error) {
	var oldSchedule, newSchedule *model.Schedule
	var err error

	if oldID < newID {
		if oldSchedule, err = lockSchedule(ctx, repo, oldID); err != nil {
			return nil, nil, err
		}
		if newSchedule, err = lockSchedule(ctx, repo, newID); err != nil {
			return nil, nil, err
		}
	} else {
		if newSchedule, err = lockSchedule(ctx, repo, newID); err != nil {
			return nil, nil, err
		}
		if oldSchedule, err = lockSchedule(ctx, repo, oldID); err != nil {
			return nil, nil, err
		}
	}

	if err := checkBookable(newSchedule, vetID); err != nil {
		return nil, nil, err
	}
	return oldSchedule, newSchedule, nil
}

// releaseSchedule 已预约或已完成的时段上没有 apptID 以外的有效预约时置回 Available
// 管理员设置的 Unavailable 不受影响
func releaseSchedule(ctx context.Context, repo *repository.Repository, schedule *model.Schedule, apptID, callerID int64) error {
	if schedule.Status != model.ScheduleBooked && schedule.Status != model.ScheduleCompleted {
		return nil
	}
	others, err := repo.Appointment.CountLiveBySchedule(ctx, schedule.ID, apptID)
	if err != nil {
		return err
	}
	if others > 0 {
		return nil
	}
	schedule.Status = model.ScheduleAvailable
	schedule.UpdatedBy = &callerID
	return repo.Schedule.Update(ctx, schedule)
}

func toAppointmentResponse(a *model.Appointment) *dto.AppointmentResponse {
	resp := &dto.AppointmentResponse{
		ID:              a.ID,
		ScheduleID:      a.ScheduleID,
		AnimalID:        a.AnimalID,
		AppointmentDate: formatDate(a.AppointmentDate),
		AppointmentTime: a.AppointmentTime,
		Reason:          a.Reason,
		Status:          a.Status,
		Version:         a.Version,
		CreatedAt:       formatTimestamp(a.CreatedAt),
		UpdatedAt:       formatTimestamp(a.UpdatedAt),
	}
	if a.Schedule != nil {
		resp.VeterinarianID = a.Schedule.VeterinarianID
		resp.ScheduleStatus = a.Schedule.Status
		if a.Schedule.Veterinarian != nil {
			resp.Veterinarian = a.Schedule.Veterinarian.DisplayName()
		}
	}
	if a.Animal != nil {
		resp.AnimalName = a.Animal.Name
		if a.Animal.Owner != nil {
			resp.OwnerName = a.Animal.Owner.FullName()
		}
	}
	return resp
}
