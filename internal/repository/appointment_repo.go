package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"animal-care-clinic/internal/model"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// AppointmentFilter 预约列表过滤条件
type AppointmentFilter struct {
	VeterinarianID *int64
	AnimalID       *int64
	Status         string
	From           *time.Time // 含
	To             *time.Time // 含
	Page
}

// AppointmentRepository 预约数据访问接口
type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	// GetByIDForUpdate 以 SELECT ... FOR UPDATE 读取，须在事务内调用
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, int64, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Appointment, error)
	// CountLiveBySchedule 统计时段上除 excludeID 外未取消的预约数
	CountLiveBySchedule(ctx context.Context, scheduleID, excludeID int64) (int64, error)
	CountBySchedule(ctx context.Context, scheduleID int64) (int64, error)
	CountByAnimal(ctx context.Context, animalID int64) (int64, error)
	Update(ctx context.Context, appt *model.Appointment) error
	Delete(ctx context.Context, id int64) error
}

type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *appointmentRepo) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Schedule.Veterinarian").
		Preload("Animal.Owner").
		Where("id = ?", id).
		First(&appt).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&appt).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepo) List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, int64, error) {
	var appts []model.Appointment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appointment{})
	if filter.VeterinarianID != nil {
		db = db.Joins("JOIN schedules ON schedules.id = appointments.schedule_id").
			Where("schedules.veterinarian_id = ?", *filter.VeterinarianID)
	}
	if filter.AnimalID != nil {
		db = db.Where("appointments.animal_id = ?", *filter.AnimalID)
	}
	if filter.Status != "" {
		db = db.Where("appointments.status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("appointments.appointment_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("appointments.appointment_date <= ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(db, filter.Page).
		Preload("Schedule.Veterinarian").
		Preload("Animal.Owner").
		Order("appointments.appointment_date DESC, appointments.appointment_time, appointments.id").
		Find(&appts).Error; err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

// ListByDate 某日全部未取消的预约，按时间排序
func (r *appointmentRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Schedule.Veterinarian").
		Preload("Animal.Owner").
		Where("appointment_date = ? AND status <> ?", date, model.AppointmentCancelled).
		Order("appointment_time, id").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepo) CountLiveBySchedule(ctx context.Context, scheduleID, excludeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("schedule_id = ? AND status <> ? AND id <> ?", scheduleID, model.AppointmentCancelled, excludeID).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepo) CountBySchedule(ctx context.Context, scheduleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("schedule_id = ?", scheduleID).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepo) CountByAnimal(ctx context.Context, animalID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("animal_id = ?", animalID).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepo) Update(ctx context.Context, appt *model.Appointment) error {
	oldVersion := appt.Version
	result := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ? AND version = ?", appt.ID, oldVersion).
		Updates(map[string]interface{}{
			"schedule_id":      appt.ScheduleID,
			"animal_id":        appt.AnimalID,
			"appointment_date": appt.AppointmentDate,
			"appointment_time": appt.AppointmentTime,
			"reason":           appt.Reason,
			"status":           appt.Status,
			"updated_by":       appt.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	appt.Version = oldVersion + 1
	return nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Appointment{}).Error
}
