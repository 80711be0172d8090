package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
)

// ── 兽医模块业务错误 ──

var (
	ErrVeterinarianNotFound = errors.New("兽医不存在")
	ErrVeterinarianInUse    = errors.New("兽医仍有排班时段，无法删除")
)

// VeterinarianService 兽医业务接口
type VeterinarianService interface {
	Create(ctx context.Context, req *dto.VeterinarianRequest, callerID int64) (*dto.VeterinarianResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.VeterinarianResponse, error)
	List(ctx context.Context, req *dto.PageRequest) ([]dto.VeterinarianResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateVeterinarianRequest, callerID int64) (*dto.VeterinarianResponse, error)
	Delete(ctx context.Context, id int64) error
}

type veterinarianService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewVeterinarianService 创建 VeterinarianService 实例
func NewVeterinarianService(repo *repository.Repository, logger *zap.Logger) VeterinarianService {
	return &veterinarianService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *veterinarianService) Create(ctx context.Context, req *dto.VeterinarianRequest, callerID int64) (*dto.VeterinarianResponse, error) {
	normalizeContact(&req.Email, &req.PhoneNumber)
	if err := s.validate(ctx, req, req, 0); err != nil {
		return nil, err
	}

	vet := &model.Veterinarian{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Speciality:  strings.TrimSpace(req.Speciality),
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}
	vet.CreatedBy = &callerID
	vet.UpdatedBy = &callerID

	if err := s.repo.Veterinarian.Create(ctx, vet); err != nil {
		if ve, ok := duplicateFields(err); ok {
			return nil, ve
		}
		s.logger.Error("创建兽医失败", zap.Error(err))
		return nil, err
	}

	return toVeterinarianResponse(vet), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *veterinarianService) GetByID(ctx context.Context, id int64) (*dto.VeterinarianResponse, error) {
	vet, err := s.repo.Veterinarian.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVeterinarianNotFound
		}
		s.logger.Error("查询兽医失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toVeterinarianResponse(vet), nil
}

// ────────────────────── List ──────────────────────

func (s *veterinarianService) List(ctx context.Context, req *dto.PageRequest) ([]dto.VeterinarianResponse, int64, error) {
	req.Normalize()
	vets, total, err := s.repo.Veterinarian.List(ctx, repository.Page{Offset: req.Offset(), Limit: req.PageSize})
	if err != nil {
		s.logger.Error("列出兽医失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.VeterinarianResponse, 0, len(vets))
	for i := range vets {
		result = append(result, *toVeterinarianResponse(&vets[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *veterinarianService) Update(ctx context.Context, id int64, req *dto.UpdateVeterinarianRequest, callerID int64) (*dto.VeterinarianResponse, error) {
	vet, err := s.repo.Veterinarian.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVeterinarianNotFound
		}
		s.logger.Error("查询兽医失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	normalizeContact(&req.Email, &req.PhoneNumber)
	if err := s.validate(ctx, req, &req.VeterinarianRequest, id); err != nil {
		return nil, err
	}
	if vet.Version != req.Version {
		return nil, ErrConcurrencyConflict
	}

	vet.FirstName = strings.TrimSpace(req.FirstName)
	vet.LastName = strings.TrimSpace(req.LastName)
	vet.Speciality = strings.TrimSpace(req.Speciality)
	vet.PhoneNumber = req.PhoneNumber
	vet.Email = req.Email
	vet.UpdatedBy = &callerID

	if err := s.repo.Veterinarian.Update(ctx, vet); err != nil {
		if ve, ok := duplicateFields(err); ok {
			return nil, ve
		}
		if errors.Is(err, ErrConcurrencyConflict) {
			return nil, err
		}
		s.logger.Error("更新兽医失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return toVeterinarianResponse(vet), nil
}

// ────────────────────── Delete ──────────────────────

func (s *veterinarianService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Veterinarian.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVeterinarianNotFound
		}
		s.logger.Error("查询兽医失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Schedule.CountByVeterinarian(ctx, id)
	if err != nil {
		s.logger.Error("统计兽医排班失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrVeterinarianInUse
	}

	if err := s.repo.Veterinarian.Delete(ctx, id); err != nil {
		s.logger.Error("删除兽医失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// validate 校验 req 的字段规则以及邮箱、电话唯一性（排除 excludeID 自身）
func (s *veterinarianService) validate(ctx context.Context, req interface{}, fields *dto.VeterinarianRequest, excludeID int64) error {
	ve := &ValidationError{}
	validateStruct(ve, req)

	if fields.Email != "" && !ve.HasField("email") {
		dup, err := s.repo.Veterinarian.ExistsByEmail(ctx, fields.Email, excludeID)
		if err != nil {
			s.logger.Error("检查兽医邮箱失败", zap.Error(err))
			return err
		}
		if dup {
			ve.Add("email", msgDuplicateEmail)
		}
	}
	if fields.PhoneNumber != "" && !ve.HasField("phone_number") {
		dup, err := s.repo.Veterinarian.ExistsByPhone(ctx, fields.PhoneNumber, excludeID)
		if err != nil {
			s.logger.Error("检查兽医电话失败", zap.Error(err))
			return err
		}
		if dup {
			ve.Add("phone_number", msgDuplicatePhone)
		}
	}
	return ve.Err()
}

func normalizeContact(email, phone *string) {
	*email = strings.TrimSpace(*email)
	*phone = strings.TrimSpace(*phone)
}

func toVeterinarianResponse(v *model.Veterinarian) *dto.VeterinarianResponse {
	return &dto.VeterinarianResponse{
		ID:          v.ID,
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Speciality:  v.Speciality,
		PhoneNumber: v.PhoneNumber,
		Email:       v.Email,
		DisplayName: v.DisplayName(),
		Version:     v.Version,
		CreatedAt:   formatTimestamp(v.CreatedAt),
		UpdatedAt:   formatTimestamp(v.UpdatedAt),
	}
}
