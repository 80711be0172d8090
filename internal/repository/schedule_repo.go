package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"animal-care-clinic/internal/model"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// ScheduleFilter 时段列表过滤条件
type ScheduleFilter struct {
	VeterinarianID *int64
	From           *time.Time // 含
	To             *time.Time // 含
	Status         string
	Page
}

// ScheduleRepository 排班时段数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id int64) (*model.Schedule, error)
	// GetByIDForUpdate 以 SELECT ... FOR UPDATE 读取，须在事务内调用
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Schedule, error)
	List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, int64, error)
	ListAvailable(ctx context.Context, vetID int64, date time.Time) ([]model.Schedule, error)
	ExistsSlot(ctx context.Context, vetID int64, date time.Time, timeSlot string, excludeID int64) (bool, error)
	CountByVeterinarian(ctx context.Context, vetID int64) (int64, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	Delete(ctx context.Context, id int64) error
	ListCalendar(ctx context.Context, vetID int64, from, to time.Time) ([]model.VetCalendarEntry, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id int64) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Veterinarian").
		Where("id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, int64, error) {
	var schedules []model.Schedule
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Schedule{})
	if filter.VeterinarianID != nil {
		db = db.Where("veterinarian_id = ?", *filter.VeterinarianID)
	}
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date <= ?", *filter.To)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, filter.Page).
		Preload("Veterinarian").
		Order("date, time_slot, veterinarian_id").
		Find(&schedules).Error; err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

// ListAvailable 某兽医某日全部可预约时段，按时间排序
func (r *scheduleRepo) ListAvailable(ctx context.Context, vetID int64, date time.Time) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("veterinarian_id = ? AND date = ? AND status = ?", vetID, date, model.ScheduleAvailable).
		Order("time_slot").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) ExistsSlot(ctx context.Context, vetID int64, date time.Time, timeSlot string, excludeID int64) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("veterinarian_id = ? AND date = ? AND time_slot = ? AND id <> ?", vetID, date, timeSlot, excludeID))
}

func (r *scheduleRepo) CountByVeterinarian(ctx context.Context, vetID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("veterinarian_id = ?", vetID).
		Count(&count).Error
	return count, err
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	oldVersion := schedule.Version
	result := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ? AND version = ?", schedule.ID, oldVersion).
		Updates(map[string]interface{}{
			"veterinarian_id": schedule.VeterinarianID,
			"date":            schedule.Date,
			"time_slot":       schedule.TimeSlot,
			"status":          schedule.Status,
			"updated_by":      schedule.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	schedule.Version = oldVersion + 1
	return nil
}

func (r *scheduleRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Schedule{}).Error
}

// ListCalendar 读取 vw_vet_calendar 视图，[from, to] 闭区间
func (r *scheduleRepo) ListCalendar(ctx context.Context, vetID int64, from, to time.Time) ([]model.VetCalendarEntry, error) {
	var entries []model.VetCalendarEntry
	err := r.db.WithContext(ctx).
		Where("veterinarian_id = ? AND date >= ? AND date <= ?", vetID, from, to).
		Order("date, time_slot").
		Find(&entries).Error
	return entries, err
}
