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

// ── 宠物主人模块业务错误 ──

var (
	ErrOwnerNotFound   = errors.New("宠物主人不存在")
	ErrOwnerHasAnimals = errors.New("宠物主人名下仍有动物，无法删除")
)

// OwnerService 宠物主人业务接口
type OwnerService interface {
	Create(ctx context.Context, req *dto.OwnerRequest, callerID int64) (*dto.OwnerResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.OwnerResponse, error)
	List(ctx context.Context, req *dto.OwnerListRequest) ([]dto.OwnerResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateOwnerRequest, callerID int64) (*dto.OwnerResponse, error)
	Delete(ctx context.Context, id int64) error
}

type ownerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOwnerService 创建 OwnerService 实例
func NewOwnerService(repo *repository.Repository, logger *zap.Logger) OwnerService {
	return &ownerService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *ownerService) Create(ctx context.Context, req *dto.OwnerRequest, callerID int64) (*dto.OwnerResponse, error) {
	normalizeContact(&req.Email, &req.PhoneNumber)
	if err := s.validate(ctx, req, req, 0); err != nil {
		return nil, err
	}

	owner := &model.Owner{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Address:     strings.TrimSpace(req.Address),
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}
	owner.CreatedBy = &callerID
	owner.UpdatedBy = &callerID

	if err := s.repo.Owner.Create(ctx, owner); err != nil {
		if ve, ok := duplicateFields(err); ok {
			return nil, ve
		}
		s.logger.Error("创建宠物主人失败", zap.Error(err))
		return nil, err
	}

	return toOwnerResponse(owner), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *ownerService) GetByID(ctx context.Context, id int64) (*dto.OwnerResponse, error) {
	owner, err := s.repo.Owner.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		s.logger.Error("查询宠物主人失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toOwnerResponse(owner), nil
}

// ────────────────────── List ──────────────────────

func (s *ownerService) List(ctx context.Context, req *dto.OwnerListRequest) ([]dto.OwnerResponse, int64, error) {
	req.Normalize()
	owners, total, err := s.repo.Owner.List(ctx, req.Query, repository.Page{Offset: req.Offset(), Limit: req.PageSize})
	if err != nil {
		s.logger.Error("列出宠物主人失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.OwnerResponse, 0, len(owners))
	for i := range owners {
		result = append(result, *toOwnerResponse(&owners[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *ownerService) Update(ctx context.Context, id int64, req *dto.UpdateOwnerRequest, callerID int64) (*dto.OwnerResponse, error) {
	owner, err := s.repo.Owner.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		s.logger.Error("查询宠物主人失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	normalizeContact(&req.Email, &req.PhoneNumber)
	if err := s.validate(ctx, req, &req.OwnerRequest, id); err != nil {
		return nil, err
	}
	if owner.Version != req.Version {
		return nil, ErrConcurrencyConflict
	}

	owner.FirstName = strings.TrimSpace(req.FirstName)
	owner.LastName = strings.TrimSpace(req.LastName)
	owner.Address = strings.TrimSpace(req.Address)
	owner.PhoneNumber = req.PhoneNumber
	owner.Email = req.Email
	owner.UpdatedBy = &callerID

	if err := s.repo.Owner.Update(ctx, owner); err != nil {
		if ve, ok := duplicateFields(err); ok {
			return nil, ve
		}
		if !errors.Is(err, ErrConcurrencyConflict) {
			s.logger.Error("更新宠物主人失败", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toOwnerResponse(owner), nil
}

// ────────────────────── Delete ──────────────────────

func (s *ownerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Owner.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOwnerNotFound
		}
		s.logger.Error("查询宠物主人失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Animal.CountByOwner(ctx, id)
	if err != nil {
		s.logger.Error("统计宠物主人名下动物失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrOwnerHasAnimals
	}

	if err := s.repo.Owner.Delete(ctx, id); err != nil {
		s.logger.Error("删除宠物主人失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *ownerService) validate(ctx context.Context, req interface{}, fields *dto.OwnerRequest, excludeID int64) error {
	ve := &ValidationError{}
	validateStruct(ve, req)

	if fields.Email != "" && !ve.HasField("email") {
		dup, err := s.repo.Owner.ExistsByEmail(ctx, fields.Email, excludeID)
		if err != nil {
			s.logger.Error("检查宠物主人邮箱失败", zap.Error(err))
			return err
		}
		if dup {
			ve.Add("email", msgDuplicateEmail)
		}
	}
	if fields.PhoneNumber != "" && !ve.HasField("phone_number") {
		dup, err := s.repo.Owner.ExistsByPhone(ctx, fields.PhoneNumber, excludeID)
		if err != nil {
			s.logger.Error("检查宠物主人电话失败", zap.Error(err))
			return err
		}
		if dup {
			ve.Add("phone_number", msgDuplicatePhone)
		}
	}
	return ve.Err()
}

func toOwnerResponse(o *model.Owner) *dto.OwnerResponse {
	resp := &dto.OwnerResponse{
		ID:          o.ID,
		FirstName:   o.FirstName,
		LastName:    o.LastName,
		FullName:    o.FullName(),
		Address:     o.Address,
		PhoneNumber: o.PhoneNumber,
		Email:       o.Email,
		Version:     o.Version,
		CreatedAt:   formatTimestamp(o.CreatedAt),
		UpdatedAt:   formatTimestamp(o.UpdatedAt),
	}
	for i := range o.Animals {
		resp.Animals = append(resp.Animals, *toAnimalResponse(&o.Animals[i]))
	}
	return resp
}
