package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Veterinarian VeterinarianRepository
	Owner        OwnerRepository
	Animal       AnimalRepository
	Schedule     ScheduleRepository
	Appointment  AppointmentRepository
	VisitHistory VisitHistoryRepository
	UserAccount  UserAccountRepository
	Report       ReportRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Veterinarian: NewVeterinarianRepo(db),
		Owner:        NewOwnerRepo(db),
		Animal:       NewAnimalRepo(db),
		Schedule:     NewScheduleRepo(db),
		Appointment:  NewAppointmentRepo(db),
		VisitHistory: NewVisitHistoryRepo(db),
		UserAccount:  NewUserAccountRepo(db),
		Report:       NewReportRepo(db),
	}
}

// RunInTx 在单个事务中执行 fn，fn 返回错误或 panic 时回滚
// db 为 nil 时直接以当前聚合执行 fn
func (r *Repository) RunInTx(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// ── 分页与过滤 ──

// Page 偏移分页参数
type Page struct {
	Offset int
	Limit  int
}

func paginate(db *gorm.DB, p Page) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}
