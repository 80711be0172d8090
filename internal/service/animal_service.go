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

// ── 动物模块业务错误 ──

var (
	ErrAnimalNotFound = errors.New("动物不存在")
	ErrAnimalInUse    = errors.New("动物仍有预约记录，无法删除")
)

// AnimalService 动物业务接口
type AnimalService interface {
	Create(ctx context.Context, req *dto.AnimalRequest, callerID int64) (*dto.AnimalResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.AnimalResponse, error)
	List(ctx context.Context, req *dto.AnimalListRequest) ([]dto.AnimalResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateAnimalRequest, callerID int64) (*dto.AnimalResponse, error)
	Delete(ctx context.Context, id int64) error
}

type animalService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnimalService 创建 AnimalService 实例
func NewAnimalService(repo *repository.Repository, logger *zap.Logger) AnimalService {
	return &animalService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *animalService) Create(ctx context.Context, req *dto.AnimalRequest, callerID int64) (*dto.AnimalResponse, error) {
	owner, err := s.validate(ctx, req, req)
	if err != nil {
		return nil, err
	}

	animal := &model.Animal{OwnerID: req.OwnerID}
	applyAnimalFields(animal, req)
	animal.CreatedBy = &callerID
	animal.UpdatedBy = &callerID

	if err := s.repo.Animal.Create(ctx, animal); err != nil {
		s.logger.Error("创建动物失败", zap.Error(err))
		return nil, err
	}
	animal.Owner = owner

	return toAnimalResponse(animal), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *animalService) GetByID(ctx context.Context, id int64) (*dto.AnimalResponse, error) {
	animal, err := s.repo.Animal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimalNotFound
		}
		s.logger.Error("查询动物失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toAnimalResponse(animal), nil
}

// ────────────────────── List ──────────────────────

func (s *animalService) List(ctx context.Context, req *dto.AnimalListRequest) ([]dto.AnimalResponse, int64, error) {
	req.Normalize()
	animals, total, err := s.repo.Animal.List(ctx, req.OwnerID, repository.Page{Offset: req.Offset(), Limit: req.PageSize})
	if err != nil {
		s.logger.Error("列出动物失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AnimalResponse, 0, len(animals))
	for i := range animals {
		result = append(result, *toAnimalResponse(&animals[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *animalService) Update(ctx context.Context, id int64, req *dto.UpdateAnimalRequest, callerID int64) (*dto.AnimalResponse, error) {
	animal, err := s.repo.Animal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimalNotFound
		}
		s.logger.Error("查询动物失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	owner, err := s.validate(ctx, req, &req.AnimalRequest)
	if err != nil {
		return nil, err
	}
	if animal.Version != req.Version {
		return nil, ErrConcurrencyConflict
	}

	animal.OwnerID = req.OwnerID
	applyAnimalFields(animal, &req.AnimalRequest)
	animal.UpdatedBy = &callerID

	if err := s.repo.Animal.Update(ctx, animal); err != nil {
		if !errors.Is(err, ErrConcurrencyConflict) {
			s.logger.Error("更新动物失败", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}
	animal.Owner = owner

	return toAnimalResponse(animal), nil
}

// ────────────────────── Delete ──────────────────────

func (s *animalService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Animal.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnimalNotFound
		}
		s.logger.Error("查询动物失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Appointment.CountByAnimal(ctx, id)
	if err != nil {
		s.logger.Error("统计动物预约失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrAnimalInUse
	}

	if err := s.repo.Animal.Delete(ctx, id); err != nil {
		s.logger.Error("删除动物失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// validate 校验字段规则与主人存在性，返回主人供响应使用
func (s *animalService) validate(ctx context.Context, req interface{}, fields *dto.AnimalRequest) (*model.Owner, error) {
	ve := &ValidationError{}
	validateStruct(ve, req)

	var owner *model.Owner
	if fields.OwnerID > 0 {
		o, err := s.repo.Owner.GetByID(ctx, fields.OwnerID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ve.Add("owner_id", "宠物主人不存在")
		case err != nil:
			s.logger.Error("查询宠物主人失败", zap.Int64("owner_id", fields.OwnerID), zap.Error(err))
			return nil, err
		default:
			owner = o
		}
	}
	return owner, ve.Err()
}

func applyAnimalFields(a *model.Animal, req *dto.AnimalRequest) {
	a.Name = strings.TrimSpace(req.Name)
	a.Species = strings.TrimSpace(req.Species)
	a.Age = req.Age
	a.Gender = req.Gender
	a.MedicalHistory = req.MedicalHistory
}

func toAnimalResponse(a *model.Animal) *dto.AnimalResponse {
	resp := &dto.AnimalResponse{
		ID:             a.ID,
		OwnerID:        a.OwnerID,
		Name:           a.Name,
		Species:        a.Species,
		Age:            a.Age,
		Gender:         a.Gender,
		MedicalHistory: a.MedicalHistory,
		Version:        a.Version,
		CreatedAt:      formatTimestamp(a.CreatedAt),
		UpdatedAt:      formatTimestamp(a.UpdatedAt),
	}
	if a.Owner != nil {
		resp.OwnerName = a.Owner.FullName()
	}
	return resp
}
