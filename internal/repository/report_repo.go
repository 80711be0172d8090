package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"animal-care-clinic/internal/model"
)

// StatusCount 按状态分组计数
type StatusCount struct {
	Status string
	Count  int64
}

// VetWorkload 兽医工作量：区间内就诊记录数
type VetWorkload struct {
	VeterinarianID   int64
	VeterinarianName string
	VisitCount       int64
}

// DashboardCounts 首页统计
type DashboardCounts struct {
	Animals        int64
	Owners         int64
	Appointments   int64
	AvailableSlots int64
}

// ReportRepository 统计报表数据访问接口
type ReportRepository interface {
	// AppointmentStatusCounts [from, to) 区间内按状态统计预约
	AppointmentStatusCounts(ctx context.Context, from, to time.Time) ([]StatusCount, error)
	// VetWorkloads [from, to) 区间内有就诊记录的兽医及其就诊数
	VetWorkloads(ctx context.Context, from, to time.Time) ([]VetWorkload, error)
	DashboardCounts(ctx context.Context) (*DashboardCounts, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo 创建 ReportRepository 实例
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) AppointmentStatusCounts(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) VetWorkloads(ctx context.Context, from, to time.Time) ([]VetWorkload, error) {
	var rows []VetWorkload
	err := r.db.WithContext(ctx).
		Table("visit_histories AS vh").
		Select("v.id AS veterinarian_id, v.first_name || ' ' || v.last_name AS veterinarian_name, COUNT(vh.id) AS visit_count").
		Joins("JOIN veterinarians v ON v.id = vh.veterinarian_id").
		Where("vh.visit_date >= ? AND vh.visit_date < ?", from, to).
		Group("v.id, v.first_name, v.last_name").
		Order("visit_count DESC, v.id").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) DashboardCounts(ctx context.Context) (*DashboardCounts, error) {
	var c DashboardCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Animal{}).Count(&c.Animals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Owner{}).Count(&c.Owners).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Appointment{}).Count(&c.Appointments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Schedule{}).
		Where("status = ?", model.ScheduleAvailable).
		Count(&c.AvailableSlots).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
