//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/database"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=clinic password=clinic_password dbname=animal_care_clinic_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

var bookingDate = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC) // 周一

// resetTables 清空业务表，每个用例独立数据
func resetTables(t *testing.T) {
	t.Helper()
	err := testDB.Exec(`TRUNCATE visit_histories, appointments, schedules, animals, owners, user_accounts, veterinarians RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("清空测试表失败: %v", err)
	}
}

// setupTestData 创建兽医、主人、动物与一个可预约时段
func setupTestData(t *testing.T) (vet *model.Veterinarian, animal *model.Animal, schedule *model.Schedule) {
	t.Helper()
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	vet = &model.Veterinarian{
		FirstName:   "Anna",
		LastName:    "Berg",
		Speciality:  "Surgery",
		PhoneNumber: "+46701234567",
		Email:       "anna.berg@clinic.test",
	}
	if err := repo.Veterinarian.Create(ctx, vet); err != nil {
		t.Fatalf("创建兽医失败: %v", err)
	}

	owner := &model.Owner{
		FirstName:   "Erik",
		LastName:    "Lund",
		Address:     "Storgatan 1",
		PhoneNumber: "+46709876543",
		Email:       "erik.lund@example.test",
	}
	if err := repo.Owner.Create(ctx, owner); err != nil {
		t.Fatalf("创建主人失败: %v", err)
	}

	animal = &model.Animal{OwnerID: owner.ID, Name: "Bamse", Species: "Dog", Gender: "M"}
	if err := repo.Animal.Create(ctx, animal); err != nil {
		t.Fatalf("创建动物失败: %v", err)
	}

	schedule = &model.Schedule{
		VeterinarianID: vet.ID,
		Date:           bookingDate,
		TimeSlot:       "09:00",
		Status:         model.ScheduleAvailable,
	}
	if err := repo.Schedule.Create(ctx, schedule); err != nil {
		t.Fatalf("创建时段失败: %v", err)
	}
	return vet, animal, schedule
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	_, _, schedule := setupTestData(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	sentinel := errors.New("abort")
	err := repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		locked, err := txRepo.Schedule.GetByIDForUpdate(ctx, schedule.ID)
		if err != nil {
			return err
		}
		locked.Status = model.ScheduleUnavailable
		if err := txRepo.Schedule.Update(ctx, locked); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("期望返回 sentinel，实际=%v", err)
	}

	got, err := repo.Schedule.GetByID(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if got.Status != model.ScheduleAvailable || got.Version != 1 {
		t.Errorf("回滚后应保持原状态，实际 status=%s version=%d", got.Status, got.Version)
	}
}

func TestTransaction_Commit(t *testing.T) {
	_, _, schedule := setupTestData(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	err := repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		locked, err := txRepo.Schedule.GetByIDForUpdate(ctx, schedule.ID)
		if err != nil {
			return err
		}
		locked.Status = model.ScheduleUnavailable
		return txRepo.Schedule.Update(ctx, locked)
	})
	if err != nil {
		t.Fatalf("事务应提交成功: %v", err)
	}

	got, _ := repo.Schedule.GetByID(ctx, schedule.ID)
	if got.Status != model.ScheduleUnavailable || got.Version != 2 {
		t.Errorf("提交后期望 Unavailable/version=2，实际 %s/%d", got.Status, got.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Schedule_ConflictDetected(t *testing.T) {
	_, _, schedule := setupTestData(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first, _ := repo.Schedule.GetByID(ctx, schedule.ID)
	stale, _ := repo.Schedule.GetByID(ctx, schedule.ID)

	first.Status = model.ScheduleUnavailable
	if err := repo.Schedule.Update(ctx, first); err != nil {
		t.Fatalf("首次更新应成功: %v", err)
	}

	stale.TimeSlot = "09:30"
	err := repo.Schedule.Update(ctx, stale)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Constraints
// ═══════════════════════════════════════════════════════════

func TestUniqueScheduleSlotPerVeterinarian(t *testing.T) {
	vet, _, _ := setupTestData(t)
	repo := repository.NewRepository(testDB)

	dup := &model.Schedule{VeterinarianID: vet.ID, Date: bookingDate, TimeSlot: "09:00", Status: model.ScheduleAvailable}
	err := repo.Schedule.Create(context.Background(), dup)
	name, ok := pkgerrors.UniqueConstraint(err)
	if !ok || name != "uq_schedules_vet_slot" {
		t.Errorf("期望违反 uq_schedules_vet_slot，实际 name=%q err=%v", name, err)
	}
}

func TestUniqueLiveAppointmentPerSchedule(t *testing.T) {
	_, animal, schedule := setupTestData(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	newAppt := func(status string) *model.Appointment {
		a := &model.Appointment{AnimalID: animal.ID, Reason: "checkup", Status: status}
		a.SyncFromSchedule(schedule)
		return a
	}

	if err := repo.Appointment.Create(ctx, newAppt(model.AppointmentCancelled)); err != nil {
		t.Fatalf("已取消预约应可创建: %v", err)
	}
	if err := repo.Appointment.Create(ctx, newAppt(model.AppointmentBooked)); err != nil {
		t.Fatalf("首个有效预约应可创建: %v", err)
	}

	err := repo.Appointment.Create(ctx, newAppt(model.AppointmentBooked))
	name, ok := pkgerrors.UniqueConstraint(err)
	if !ok || name != "uq_appointments_live_schedule" {
		t.Errorf("期望违反 uq_appointments_live_schedule，实际 name=%q err=%v", name, err)
	}

	count, err := repo.Appointment.CountLiveBySchedule(ctx, schedule.ID, 0)
	if err != nil {
		t.Fatalf("CountLiveBySchedule 应成功: %v", err)
	}
	if count != 1 {
		t.Errorf("期望 1 个有效预约，实际=%d", count)
	}
}

func TestDeleteOwnerWithAnimals_ForeignKey(t *testing.T) {
	_, animal, _ := setupTestData(t)
	repo := repository.NewRepository(testDB)

	err := repo.Owner.Delete(context.Background(), animal.OwnerID)
	if !pkgerrors.IsForeignKeyViolation(err) {
		t.Errorf("期望外键冲突，实际=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Concurrent Booking
// ═══════════════════════════════════════════════════════════

func TestConcurrentBooking_SingleWinner(t *testing.T) {
	vet, animal, schedule := setupTestData(t)
	svc := service.NewAppointmentService(repository.NewRepository(testDB), nil, zap.NewNop())

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Book(context.Background(), &dto.BookAppointmentRequest{
				ScheduleID:     schedule.ID,
				VeterinarianID: vet.ID,
				AnimalID:       animal.ID,
				Reason:         fmt.Sprintf("concurrent booking %d", i),
			}, 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, service.ErrScheduleNotAvailable), errors.Is(err, service.ErrConcurrencyConflict):
				rejected++
			default:
				t.Errorf("意外错误: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 || rejected != workers-1 {
		t.Errorf("期望 1 成功 %d 拒绝，实际 成功=%d 拒绝=%d", workers-1, successes, rejected)
	}

	repo := repository.NewRepository(testDB)
	got, _ := repo.Schedule.GetByID(context.Background(), schedule.ID)
	if got.Status != model.ScheduleBooked {
		t.Errorf("时段应为 Booked，实际=%s", got.Status)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Reporting Views
// ═══════════════════════════════════════════════════════════

func TestReport_StatusCountsAndWorkload(t *testing.T) {
	_, animal, schedule := setupTestData(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	appt := &model.Appointment{AnimalID: animal.ID, Reason: "vaccination", Status: model.AppointmentCompleted}
	appt.SyncFromSchedule(schedule)
	if err := repo.Appointment.Create(ctx, appt); err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}

	from := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	counts, err := repo.Report.AppointmentStatusCounts(ctx, from, to)
	if err != nil {
		t.Fatalf("AppointmentStatusCounts 应成功: %v", err)
	}
	var completed int64
	for _, c := range counts {
		if c.Status == model.AppointmentCompleted {
			completed = c.Count
		}
	}
	if completed != 1 {
		t.Errorf("期望 Completed=1，实际=%d", completed)
	}

	if _, err := repo.Report.VetWorkloads(ctx, from, to); err != nil {
		t.Fatalf("VetWorkloads 应成功: %v", err)
	}
}
