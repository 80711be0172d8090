package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"animal-care-clinic/internal/clinichours"
	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
	"animal-care-clinic/pkg/metrics"
)

// ── 排班时段模块业务错误 ──

var (
	ErrScheduleNotFound     = errors.New("排班时段不存在")
	ErrScheduleNotAvailable = errors.New("排班时段不可预约")
	ErrScheduleInUse        = errors.New("排班时段已有预约，无法修改或删除")
	ErrVeterinarianMismatch = errors.New("排班时段不属于所选兽医")
	ErrOutsideClinicHours   = errors.New("时段不在诊所营业时间内")
)

// ScheduleService 排班时段业务接口
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID int64) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateScheduleRequest, callerID int64) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id int64) error
	ListAvailableSlots(ctx context.Context, req *dto.AvailableSlotsRequest) ([]dto.ScheduleResponse, error)
	TimeSlotOptions() []string
}

type scheduleService struct {
	repo    *repository.Repository
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例；collector 可为 nil
func NewScheduleService(repo *repository.Repository, collector *metrics.Collector, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, metrics: collector, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID int64) (*dto.ScheduleResponse, error) {
	date, vet, err := s.validate(ctx, s.repo, req, req, 0)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.ScheduleAvailable
	}

	schedule := &model.Schedule{
		VeterinarianID: req.VeterinarianID,
		Date:           date,
		TimeSlot:       req.TimeSlot,
		Status:         status,
	}
	schedule.CreatedBy = &callerID
	schedule.UpdatedBy = &callerID

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		if ve, ok := duplicateFields(err); ok {
			return nil, ve
		}
		s.logger.Error("创建排班时段失败", zap.Error(err))
		return nil, err
	}
	schedule.Veterinarian = vet
	s.metrics.ObserveScheduleCreated()

	return toScheduleResponse(schedule), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *scheduleService) GetByID(ctx context.Context, id int64) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班时段失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toScheduleResponse(schedule), nil
}

// ────────────────────── List ──────────────────────

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	req.Normalize()

	ve := &ValidationError{}
	filter := repository.ScheduleFilter{
		VeterinarianID: req.VeterinarianID,
		From:           parseOptionalDate(ve, "from", req.From),
		To:             parseOptionalDate(ve, "to", req.To),
		Status:         req.Status,
		Page:           repository.Page{Offset: req.Offset(), Limit: req.PageSize},
	}
	if err := ve.Err(); err != nil {
		return nil, 0, err
	}

	schedules, total, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出排班时段失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, *toScheduleResponse(&schedules[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

// Update 修改时段；时段上存在未取消的预约时拒绝，以免预约与时段的日期时间不一致
func (s *scheduleService) Update(ctx context.Context, id int64, req *dto.UpdateScheduleRequest, callerID int64) (*dto.ScheduleResponse, error) {
	var result *model.Schedule

	err := s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		schedule, err := txRepo.Schedule.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}
		// version 缺失由 validate 报字段错误
		if req.Version > 0 && schedule.Version != req.Version {
			return ErrConcurrencyConflict
		}

		live, err := txRepo.Appointment.CountLiveBySchedule(ctx, id, 0)
		if err != nil {
			return err
		}
		if live > 0 || schedule.Status == model.ScheduleBooked || schedule.Status == model.ScheduleCompleted {
			return ErrScheduleInUse
		}

		date, vet, err := s.validate(ctx, txRepo, req, &req.CreateScheduleRequest, id)
		if err != nil {
			return err
		}

		schedule.VeterinarianID = req.VeterinarianID
		schedule.Date = date
		schedule.TimeSlot = req.TimeSlot
		if req.Status != "" {
			schedule.Status = req.Status
		}
		schedule.UpdatedBy = &callerID

		if err := txRepo.Schedule.Update(ctx, schedule); err != nil {
			if ve, ok := duplicateFields(err); ok {
				return ve
			}
			return err
		}
		schedule.Veterinarian = vet
		result = schedule
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("更新排班时段失败", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toScheduleResponse(result), nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, id int64) error {
	err := s.repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Schedule.GetByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}

		count, err := txRepo.Appointment.CountBySchedule(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrScheduleInUse
		}

		return txRepo.Schedule.Delete(ctx, id)
	})
	if err != nil && !isBusinessError(err) {
		s.logger.Error("删除排班时段失败", zap.Int64("id", id), zap.Error(err))
	}
	return err
}

// ────────────────────── ListAvailableSlots ──────────────────────

// ListAvailableSlots 某兽医某日可预约时段；IncludeScheduleID 属于该兽医该日时一并返回
func (s *scheduleService) ListAvailableSlots(ctx context.Context, req *dto.AvailableSlotsRequest) ([]dto.ScheduleResponse, error) {
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		ve := &ValidationError{}
		ve.Add("date", "日期格式无效，应为 yyyy-MM-dd")
		return nil, ve
	}

	schedules, err := s.repo.Schedule.ListAvailable(ctx, req.VeterinarianID, date)
	if err != nil {
		s.logger.Error("查询可预约时段失败", zap.Int64("veterinarian_id", req.VeterinarianID), zap.Error(err))
		return nil, err
	}

	if req.IncludeScheduleID != nil {
		included := false
		for i := range schedules {
			if schedules[i].ID == *req.IncludeScheduleID {
				included = true
				break
			}
		}
		if !included {
			current, err := s.repo.Schedule.GetByID(ctx, *req.IncludeScheduleID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("查询当前时段失败", zap.Int64("id", *req.IncludeScheduleID), zap.Error(err))
				return nil, err
			}
			if current != nil && current.VeterinarianID == req.VeterinarianID && current.Date.Equal(date) {
				schedules = insertByTimeSlot(schedules, *current)
			}
		}
	}

	result := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, *toScheduleResponse(&schedules[i]))
	}
	return result, nil
}

// ────────────────────── TimeSlotOptions ──────────────────────

func (s *scheduleService) TimeSlotOptions() []string {
	return clinichours.Slots()
}

// ── 内部辅助方法 ──

// validate 累积校验：字段规则、兽医存在、营业时间、同兽医同日同时段唯一（排除 excludeID）
func (s *scheduleService) validate(ctx context.Context, repo *repository.Repository, req interface{}, fields *dto.CreateScheduleRequest, excludeID int64) (time.Time, *model.Veterinarian, error) {
	ve := &ValidationError{}
	validateStruct(ve, req)

	var vet *model.Veterinarian
	if fields.VeterinarianID > 0 {
		v, err := repo.Veterinarian.GetByID(ctx, fields.VeterinarianID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ve.Add("veterinarian_id", msgVeterinarianNotFound)
		case err != nil:
			return time.Time{}, nil, err
		default:
			vet = v
		}
	}

	var date time.Time
	dateOK := false
	if !ve.HasField("date") {
		if d, err := time.Parse(model.DateLayout, fields.Date); err == nil {
			date, dateOK = d, true
		}
	}

	var violations []clinichours.Violation
	if dateOK {
		violations = clinichours.Validate(date, fields.TimeSlot).Violations
	} else if fields.TimeSlot != "" {
		violations = clinichours.ValidateSlot(fields.TimeSlot)
	}
	for _, v := range violations {
		ve.Add(v.Field, v.Message)
	}

	if dateOK && vet != nil && !ve.HasField("time_slot") {
		dup, err := repo.Schedule.ExistsSlot(ctx, fields.VeterinarianID, date, fields.TimeSlot, excludeID)
		if err != nil {
			return time.Time{}, nil, err
		}
		if dup {
			ve.Add("time_slot", msgDuplicateSlot)
		}
	}

	return date, vet, ve.Err()
}

func insertByTimeSlot(list []model.Schedule, s model.Schedule) []model.Schedule {
	i := 0
	for i < len(list) && list[i].TimeSlot < s.TimeSlot {
		i++
	}
	list = append(list, model.Schedule{})
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}

func toScheduleResponse(s *model.Schedule) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:             s.ID,
		VeterinarianID: s.VeterinarianID,
		Date:           s.DateString(),
		TimeSlot:       s.TimeSlot,
		Status:         s.Status,
		Version:        s.Version,
		CreatedAt:      formatTimestamp(s.CreatedAt),
		UpdatedAt:      formatTimestamp(s.UpdatedAt),
	}
	if s.Veterinarian != nil {
		resp.Veterinarian = s.Veterinarian.DisplayName()
	}
	return resp
}
