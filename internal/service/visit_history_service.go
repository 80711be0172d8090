package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
)

// ── 就诊记录模块业务错误 ──

var ErrVisitHistoryNotFound = errors.New("就诊记录不存在")

// VisitHistoryService 就诊记录业务接口
type VisitHistoryService interface {
	Create(ctx context.Context, req *dto.VisitHistoryRequest, callerID int64) (*dto.VisitHistoryResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.VisitHistoryResponse, error)
	List(ctx context.Context, req *dto.VisitHistoryListRequest) ([]dto.VisitHistoryResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateVisitHistoryRequest, callerID int64) (*dto.VisitHistoryResponse, error)
	Delete(ctx context.Context, id int64) error
	ListSummaries(ctx context.Context, req *dto.VisitHistoryListRequest) ([]dto.VisitSummaryResponse, error)
}

type visitHistoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewVisitHistoryService 创建 VisitHistoryService 实例
func NewVisitHistoryService(repo *repository.Repository, logger *zap.Logger) VisitHistoryService {
	return &visitHistoryService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *visitHistoryService) Create(ctx context.Context, req *dto.VisitHistoryRequest, callerID int64) (*dto.VisitHistoryResponse, error) {
	visitDate, err := s.validate(ctx, req, req)
	if err != nil {
		return nil, err
	}

	visit := &model.VisitHistory{
		AppointmentID:  req.AppointmentID,
		AnimalID:       req.AnimalID,
		VeterinarianID: req.VeterinarianID,
		VisitDate:      visitDate,
	}
	applyVisitFields(visit, req)
	visit.CreatedBy = &callerID
	visit.UpdatedBy = &callerID

	if err := s.repo.VisitHistory.Create(ctx, visit); err != nil {
		s.logger.Error("创建就诊记录失败", zap.Int64("appointment_id", req.AppointmentID), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, visit), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *visitHistoryService) GetByID(ctx context.Context, id int64) (*dto.VisitHistoryResponse, error) {
	visit, err := s.repo.VisitHistory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitHistoryNotFound
		}
		s.logger.Error("查询就诊记录失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toVisitHistoryResponse(visit), nil
}

// ────────────────────── List ──────────────────────

func (s *visitHistoryService) List(ctx context.Context, req *dto.VisitHistoryListRequest) ([]dto.VisitHistoryResponse, int64, error) {
	req.Normalize()
	visits, total, err := s.repo.VisitHistory.List(ctx, visitFilter(req))
	if err != nil {
		s.logger.Error("列出就诊记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.VisitHistoryResponse, 0, len(visits))
	for i := range visits {
		result = append(result, *toVisitHistoryResponse(&visits[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *visitHistoryService) Update(ctx context.Context, id int64, req *dto.UpdateVisitHistoryRequest, callerID int64) (*dto.VisitHistoryResponse, error) {
	visit, err := s.repo.VisitHistory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitHistoryNotFound
		}
		s.logger.Error("查询就诊记录失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	visitDate, err := s.validate(ctx, req, &req.VisitHistoryRequest)
	if err != nil {
		return nil, err
	}
	if visit.Version != req.Version {
		return nil, ErrConcurrencyConflict
	}

	visit.AppointmentID = req.AppointmentID
	visit.AnimalID = req.AnimalID
	visit.VeterinarianID = req.VeterinarianID
	visit.VisitDate = visitDate
	applyVisitFields(visit, &req.VisitHistoryRequest)
	visit.UpdatedBy = &callerID

	if err := s.repo.VisitHistory.Update(ctx, visit); err != nil {
		if !errors.Is(err, ErrConcurrencyConflict) {
			s.logger.Error("更新就诊记录失败", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.reload(ctx, visit), nil
}

// ────────────────────── Delete ──────────────────────

func (s *visitHistoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.VisitHistory.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVisitHistoryNotFound
		}
		s.logger.Error("查询就诊记录失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.VisitHistory.Delete(ctx, id); err != nil {
		s.logger.Error("删除就诊记录失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListSummaries ──────────────────────

func (s *visitHistoryService) ListSummaries(ctx context.Context, req *dto.VisitHistoryListRequest) ([]dto.VisitSummaryResponse, error) {
	req.Normalize()
	summaries, err := s.repo.VisitHistory.ListSummaries(ctx, visitFilter(req))
	if err != nil {
		s.logger.Error("查询就诊摘要失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.VisitSummaryResponse, 0, len(summaries))
	for _, v := range summaries {
		result = append(result, dto.VisitSummaryResponse{
			VisitID:        v.VisitID,
			VisitDate:      formatDate(v.VisitDate),
			AnimalID:       v.AnimalID,
			AnimalName:     v.AnimalName,
			OwnerID:        v.OwnerID,
			OwnerName:      v.OwnerName,
			VeterinarianID: v.VeterinarianID,
			VetName:        v.VetName,
			Diagnosis:      v.Diagnosis,
			Treatment:      v.Treatment,
			Prescription:   v.Prescription,
		})
	}
	return result, nil
}

// ── 内部辅助方法 ──

// validate 累积字段规则与预约一致性：预约存在且未取消，动物、兽医与预约一致
func (s *visitHistoryService) validate(ctx context.Context, req interface{}, fields *dto.VisitHistoryRequest) (time.Time, error) {
	ve := &ValidationError{}
	validateStruct(ve, req)

	var visitDate time.Time
	if !ve.HasField("visit_date") {
		visitDate, _ = time.Parse(model.DateLayout, fields.VisitDate)
	}

	if fields.AppointmentID > 0 {
		appt, err := s.repo.Appointment.GetByID(ctx, fields.AppointmentID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ve.Add("appointment_id", "预约不存在")
		case err != nil:
			s.logger.Error("查询预约失败", zap.Int64("appointment_id", fields.AppointmentID), zap.Error(err))
			return time.Time{}, err
		default:
			if appt.Status == model.AppointmentCancelled {
				ve.Add("appointment_id", "已取消的预约不能登记就诊记录")
			}
			if fields.AnimalID > 0 && appt.AnimalID != fields.AnimalID {
				ve.Add("animal_id", "动物与预约不一致")
			}
			if fields.VeterinarianID > 0 && appt.Schedule != nil && appt.Schedule.VeterinarianID != fields.VeterinarianID {
				ve.Add("veterinarian_id", "兽医与预约不一致")
			}
		}
	}
	return visitDate, ve.Err()
}

// reload 读取关联后的就诊记录；失败时退回当前对象
func (s *visitHistoryService) reload(ctx context.Context, visit *model.VisitHistory) *dto.VisitHistoryResponse {
	full, err := s.repo.VisitHistory.GetByID(ctx, visit.ID)
	if err != nil {
		return toVisitHistoryResponse(visit)
	}
	return toVisitHistoryResponse(full)
}

func visitFilter(req *dto.VisitHistoryListRequest) repository.VisitHistoryFilter {
	return repository.VisitHistoryFilter{
		AnimalID:       req.AnimalID,
		OwnerID:        req.OwnerID,
		VeterinarianID: req.VeterinarianID,
		Page:           repository.Page{Offset: req.Offset(), Limit: req.PageSize},
	}
}

func applyVisitFields(v *model.VisitHistory, req *dto.VisitHistoryRequest) {
	v.Diagnosis = strings.TrimSpace(req.Diagnosis)
	v.Treatment = strings.TrimSpace(req.Treatment)
	v.Prescription = req.Prescription
}

func toVisitHistoryResponse(v *model.VisitHistory) *dto.VisitHistoryResponse {
	resp := &dto.VisitHistoryResponse{
		ID:             v.ID,
		AppointmentID:  v.AppointmentID,
		AnimalID:       v.AnimalID,
		VeterinarianID: v.VeterinarianID,
		VisitDate:      formatDate(v.VisitDate),
		Diagnosis:      v.Diagnosis,
		Treatment:      v.Treatment,
		Prescription:   v.Prescription,
		Version:        v.Version,
		CreatedAt:      formatTimestamp(v.CreatedAt),
		UpdatedAt:      formatTimestamp(v.UpdatedAt),
	}
	if v.Animal != nil {
		resp.AnimalName = v.Animal.Name
	}
	if v.Veterinarian != nil {
		resp.Veterinarian = v.Veterinarian.DisplayName()
	}
	return resp
}
