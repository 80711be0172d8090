package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
	pkgerrors "animal-care-clinic/pkg/errors"
)

// 所有 mock 以副本存取，模拟数据库行与内存对象相互独立

// ── Mock VeterinarianRepository ──

type mockVeterinarianRepo struct {
	nextID int64
	vets   map[int64]*model.Veterinarian
}

func newMockVeterinarianRepo() *mockVeterinarianRepo {
	return &mockVeterinarianRepo{vets: make(map[int64]*model.Veterinarian)}
}

func (m *mockVeterinarianRepo) Create(_ context.Context, vet *model.Veterinarian) error {
	m.nextID++
	vet.ID = m.nextID
	vet.Version = 1
	cp := *vet
	m.vets[vet.ID] = &cp
	return nil
}

func (m *mockVeterinarianRepo) GetByID(_ context.Context, id int64) (*model.Veterinarian, error) {
	if v, ok := m.vets[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVeterinarianRepo) List(_ context.Context, _ repository.Page) ([]model.Veterinarian, int64, error) {
	var result []model.Veterinarian
	for _, v := range m.vets {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *mockVeterinarianRepo) Update(_ context.Context, vet *model.Veterinarian) error {
	stored, ok := m.vets[vet.ID]
	if !ok || stored.Version != vet.Version {
		return pkgerrors.ErrOptimisticLock
	}
	vet.Version++
	cp := *vet
	m.vets[vet.ID] = &cp
	return nil
}

func (m *mockVeterinarianRepo) Delete(_ context.Context, id int64) error {
	delete(m.vets, id)
	return nil
}

func (m *mockVeterinarianRepo) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, v := range m.vets {
		if v.ID != excludeID && strings.EqualFold(v.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockVeterinarianRepo) ExistsByPhone(_ context.Context, phone string, excludeID int64) (bool, error) {
	for _, v := range m.vets {
		if v.ID != excludeID && v.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock OwnerRepository ──

type mockOwnerRepo struct {
	nextID int64
	owners map[int64]*model.Owner
}

func newMockOwnerRepo() *mockOwnerRepo {
	return &mockOwnerRepo{owners: make(map[int64]*model.Owner)}
}

func (m *mockOwnerRepo) Create(_ context.Context, owner *model.Owner) error {
	m.nextID++
	owner.ID = m.nextID
	owner.Version = 1
	cp := *owner
	m.owners[owner.ID] = &cp
	return nil
}

func (m *mockOwnerRepo) GetByID(_ context.Context, id int64) (*model.Owner, error) {
	if o, ok := m.owners[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOwnerRepo) List(_ context.Context, query string, _ repository.Page) ([]model.Owner, int64, error) {
	var result []model.Owner
	for _, o := range m.owners {
		if query == "" || strings.Contains(strings.ToLower(o.FirstName+" "+o.LastName), strings.ToLower(query)) {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *mockOwnerRepo) Update(_ context.Context, owner *model.Owner) error {
	stored, ok := m.owners[owner.ID]
	if !ok || stored.Version != owner.Version {
		return pkgerrors.ErrOptimisticLock
	}
	owner.Version++
	cp := *owner
	m.owners[owner.ID] = &cp
	return nil
}

func (m *mockOwnerRepo) Delete(_ context.Context, id int64) error {
	delete(m.owners, id)
	return nil
}

func (m *mockOwnerRepo) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, o := range m.owners {
		if o.ID != excludeID && strings.EqualFold(o.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOwnerRepo) ExistsByPhone(_ context.Context, phone string, excludeID int64) (bool, error) {
	for _, o := range m.owners {
		if o.ID != excludeID && o.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock AnimalRepository ──

type mockAnimalRepo struct {
	nextID  int64
	animals map[int64]*model.Animal
}

func newMockAnimalRepo() *mockAnimalRepo {
	return &mockAnimalRepo{animals: make(map[int64]*model.Animal)}
}

func (m *mockAnimalRepo) Create(_ context.Context, animal *model.Animal) error {
	m.nextID++
	animal.ID = m.nextID
	animal.Version = 1
	cp := *animal
	m.animals[animal.ID] = &cp
	return nil
}

// put 以指定 id 写入，供测试预置数据
func (m *mockAnimalRepo) put(animal *model.Animal) {
	if animal.Version == 0 {
		animal.Version = 1
	}
	cp := *animal
	m.animals[animal.ID] = &cp
	if animal.ID > m.nextID {
		m.nextID = animal.ID
	}
}

func (m *mockAnimalRepo) GetByID(_ context.Context, id int64) (*model.Animal, error) {
	if a, ok := m.animals[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnimalRepo) List(_ context.Context, ownerID *int64, _ repository.Page) ([]model.Animal, int64, error) {
	var result []model.Animal
	for _, a := range m.animals {
		if ownerID == nil || a.OwnerID == *ownerID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *mockAnimalRepo) Update(_ context.Context, animal *model.Animal) error {
	stored, ok := m.animals[animal.ID]
	if !ok || stored.Version != animal.Version {
		return pkgerrors.ErrOptimisticLock
	}
	animal.Version++
	cp := *animal
	m.animals[animal.ID] = &cp
	return nil
}

func (m *mockAnimalRepo) Delete(_ context.Context, id int64) error {
	delete(m.animals, id)
	return nil
}

func (m *mockAnimalRepo) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	var n int64
	for _, a := range m.animals {
		if a.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	nextID    int64
	schedules map[int64]*model.Schedule
	calendar  []model.VetCalendarEntry
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[int64]*model.Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	for _, s := range m.schedules {
		if s.VeterinarianID == schedule.VeterinarianID && s.Date.Equal(schedule.Date) && s.TimeSlot == schedule.TimeSlot {
			return uniqueViolation(constraintScheduleSlot)
		}
	}
	m.nextID++
	schedule.ID = m.nextID
	schedule.Version = 1
	cp := *schedule
	cp.Veterinarian = nil
	m.schedules[schedule.ID] = &cp
	return nil
}

// put 以指定 id 写入，供测试预置数据
func (m *mockScheduleRepo) put(schedule *model.Schedule) {
	if schedule.Version == 0 {
		schedule.Version = 1
	}
	cp := *schedule
	m.schedules[schedule.ID] = &cp
	if schedule.ID > m.nextID {
		m.nextID = schedule.ID
	}
}

func (m *mockScheduleRepo) status(id int64) string {
	if s, ok := m.schedules[id]; ok {
		return s.Status
	}
	return ""
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id int64) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Schedule, error) {
	return m.GetByID(ctx, id)
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter) ([]model.Schedule, int64, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if filter.VeterinarianID != nil && s.VeterinarianID != *filter.VeterinarianID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		result = append(result, *s)
	}
	sortSchedules(result)
	return result, int64(len(result)), nil
}

func (m *mockScheduleRepo) ListAvailable(_ context.Context, vetID int64, date time.Time) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.VeterinarianID == vetID && s.Date.Equal(date) && s.Status == model.ScheduleAvailable {
			result = append(result, *s)
		}
	}
	sortSchedules(result)
	return result, nil
}

func (m *mockScheduleRepo) ExistsSlot(_ context.Context, vetID int64, date time.Time, timeSlot string, excludeID int64) (bool, error) {
	for _, s := range m.schedules {
		if s.ID != excludeID && s.VeterinarianID == vetID && s.Date.Equal(date) && s.TimeSlot == timeSlot {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockScheduleRepo) CountByVeterinarian(_ context.Context, vetID int64) (int64, error) {
	var n int64
	for _, s := range m.schedules {
		if s.VeterinarianID == vetID {
			n++
		}
	}
	return n, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.Schedule) error {
	stored, ok := m.schedules[schedule.ID]
	if !ok || stored.Version != schedule.Version {
		return pkgerrors.ErrOptimisticLock
	}
	schedule.Version++
	cp := *schedule
	cp.Veterinarian = nil
	m.schedules[schedule.ID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id int64) error {
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepo) ListCalendar(_ context.Context, vetID int64, from, to time.Time) ([]model.VetCalendarEntry, error) {
	var result []model.VetCalendarEntry
	for _, e := range m.calendar {
		if e.VeterinarianID == vetID && !e.Date.Before(from) && !e.Date.After(to) {
			result = append(result, e)
		}
	}
	return result, nil
}

func sortSchedules(list []model.Schedule) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].TimeSlot < list[j].TimeSlot
	})
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	nextID       int64
	appointments map[int64]*model.Appointment
	schedules    *mockScheduleRepo
	animals      *mockAnimalRepo
}

func newMockAppointmentRepo(schedules *mockScheduleRepo, animals *mockAnimalRepo) *mockAppointmentRepo {
	return &mockAppointmentRepo{
		appointments: make(map[int64]*model.Appointment),
		schedules:    schedules,
		animals:      animals,
	}
}

// Create 模拟活动预约部分唯一索引
func (m *mockAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	if appt.Status != model.AppointmentCancelled {
		for _, a := range m.appointments {
			if a.ScheduleID == appt.ScheduleID && a.Status != model.AppointmentCancelled {
				return uniqueViolation(constraintLiveSchedule)
			}
		}
	}
	m.nextID++
	appt.ID = m.nextID
	appt.Version = 1
	m.store(appt)
	return nil
}

func (m *mockAppointmentRepo) store(appt *model.Appointment) {
	cp := *appt
	cp.Schedule = nil
	cp.Animal = nil
	m.appointments[appt.ID] = &cp
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id int64) (*model.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	if s, ok := m.schedules.schedules[a.ScheduleID]; ok {
		sc := *s
		cp.Schedule = &sc
	}
	if an, ok := m.animals.animals[a.AnimalID]; ok {
		ac := *an
		cp.Animal = &ac
	}
	return &cp, nil
}

func (m *mockAppointmentRepo) GetByIDForUpdate(_ context.Context, id int64) (*model.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) List(ctx context.Context, filter repository.AppointmentFilter) ([]model.Appointment, int64, error) {
	var result []model.Appointment
	for id, a := range m.appointments {
		if filter.AnimalID != nil && a.AnimalID != *filter.AnimalID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		full, _ := m.GetByID(ctx, id)
		if filter.VeterinarianID != nil && (full.Schedule == nil || full.Schedule.VeterinarianID != *filter.VeterinarianID) {
			continue
		}
		result = append(result, *full)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *mockAppointmentRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for id, a := range m.appointments {
		if a.AppointmentDate.Equal(date) && a.Status != model.AppointmentCancelled {
			full, _ := m.GetByID(ctx, id)
			result = append(result, *full)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppointmentTime < result[j].AppointmentTime })
	return result, nil
}

func (m *mockAppointmentRepo) CountLiveBySchedule(_ context.Context, scheduleID, excludeID int64) (int64, error) {
	var n int64
	for _, a := range m.appointments {
		if a.ScheduleID == scheduleID && a.ID != excludeID && a.Status != model.AppointmentCancelled {
			n++
		}
	}
	return n, nil
}

func (m *mockAppointmentRepo) CountBySchedule(_ context.Context, scheduleID int64) (int64, error) {
	var n int64
	for _, a := range m.appointments {
		if a.ScheduleID == scheduleID {
			n++
		}
	}
	return n, nil
}

func (m *mockAppointmentRepo) CountByAnimal(_ context.Context, animalID int64) (int64, error) {
	var n int64
	for _, a := range m.appointments {
		if a.AnimalID == animalID {
			n++
		}
	}
	return n, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, appt *model.Appointment) error {
	stored, ok := m.appointments[appt.ID]
	if !ok || stored.Version != appt.Version {
		return pkgerrors.ErrOptimisticLock
	}
	appt.Version++
	m.store(appt)
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id int64) error {
	delete(m.appointments, id)
	return nil
}

// ── Mock VisitHistoryRepository ──

type mockVisitHistoryRepo struct {
	nextID int64
	visits map[int64]*model.VisitHistory
}

func newMockVisitHistoryRepo() *mockVisitHistoryRepo {
	return &mockVisitHistoryRepo{visits: make(map[int64]*model.VisitHistory)}
}

func (m *mockVisitHistoryRepo) Create(_ context.Context, visit *model.VisitHistory) error {
	m.nextID++
	visit.ID = m.nextID
	visit.Version = 1
	cp := *visit
	m.visits[visit.ID] = &cp
	return nil
}

func (m *mockVisitHistoryRepo) GetByID(_ context.Context, id int64) (*model.VisitHistory, error) {
	if v, ok := m.visits[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVisitHistoryRepo) List(_ context.Context, filter repository.VisitHistoryFilter) ([]model.VisitHistory, int64, error) {
	var result []model.VisitHistory
	for _, v := range m.visits {
		if filter.AnimalID != nil && v.AnimalID != *filter.AnimalID {
			continue
		}
		if filter.VeterinarianID != nil && v.VeterinarianID != *filter.VeterinarianID {
			continue
		}
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *mockVisitHistoryRepo) Update(_ context.Context, visit *model.VisitHistory) error {
	stored, ok := m.visits[visit.ID]
	if !ok || stored.Version != visit.Version {
		return pkgerrors.ErrOptimisticLock
	}
	visit.Version++
	cp := *visit
	m.visits[visit.ID] = &cp
	return nil
}

func (m *mockVisitHistoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.visits, id)
	return nil
}

func (m *mockVisitHistoryRepo) CountByAppointment(_ context.Context, appointmentID int64) (int64, error) {
	var n int64
	for _, v := range m.visits {
		if v.AppointmentID == appointmentID {
			n++
		}
	}
	return n, nil
}

func (m *mockVisitHistoryRepo) ListSummaries(_ context.Context, filter repository.VisitHistoryFilter) ([]model.VisitSummary, error) {
	var result []model.VisitSummary
	for _, v := range m.visits {
		if filter.AnimalID != nil && v.AnimalID != *filter.AnimalID {
			continue
		}
		result = append(result, model.VisitSummary{
			VisitID:        v.ID,
			VisitDate:      v.VisitDate,
			AnimalID:       v.AnimalID,
			VeterinarianID: v.VeterinarianID,
			Diagnosis:      v.Diagnosis,
			Treatment:      v.Treatment,
			Prescription:   v.Prescription,
		})
	}
	return result, nil
}

// ── Mock UserAccountRepository ──

type mockUserAccountRepo struct {
	nextID int64
	users  map[int64]*model.UserAccount
}

func newMockUserAccountRepo() *mockUserAccountRepo {
	return &mockUserAccountRepo{users: make(map[int64]*model.UserAccount)}
}

func (m *mockUserAccountRepo) Create(_ context.Context, user *model.UserAccount) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return uniqueViolation(constraintUsername)
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.Version = 1
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserAccountRepo) GetByID(_ context.Context, id int64) (*model.UserAccount, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserAccountRepo) GetByUsername(_ context.Context, username string) (*model.UserAccount, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	statusCounts []repository.StatusCount
	workloads    []repository.VetWorkload
	counts       repository.DashboardCounts
	lastFrom     time.Time
	lastTo       time.Time
}

func (m *mockReportRepo) AppointmentStatusCounts(_ context.Context, from, to time.Time) ([]repository.StatusCount, error) {
	m.lastFrom, m.lastTo = from, to
	return m.statusCounts, nil
}

func (m *mockReportRepo) VetWorkloads(_ context.Context, _, _ time.Time) ([]repository.VetWorkload, error) {
	return m.workloads, nil
}

func (m *mockReportRepo) DashboardCounts(_ context.Context) (*repository.DashboardCounts, error) {
	c := m.counts
	return &c, nil
}

// ── 聚合 ──

type mockRepos struct {
	vets         *mockVeterinarianRepo
	owners       *mockOwnerRepo
	animals      *mockAnimalRepo
	schedules    *mockScheduleRepo
	appointments *mockAppointmentRepo
	visits       *mockVisitHistoryRepo
	users        *mockUserAccountRepo
	reports      *mockReportRepo
}

// newMockRepository 返回无数据库连接的聚合，RunInTx 直接执行回调
func newMockRepository() (*mockRepos, *repository.Repository) {
	m := &mockRepos{
		vets:      newMockVeterinarianRepo(),
		owners:    newMockOwnerRepo(),
		animals:   newMockAnimalRepo(),
		schedules: newMockScheduleRepo(),
		visits:    newMockVisitHistoryRepo(),
		users:     newMockUserAccountRepo(),
		reports:   &mockReportRepo{},
	}
	m.appointments = newMockAppointmentRepo(m.schedules, m.animals)

	repo := &repository.Repository{
		Veterinarian: m.vets,
		Owner:        m.owners,
		Animal:       m.animals,
		Schedule:     m.schedules,
		Appointment:  m.appointments,
		VisitHistory: m.visits,
		UserAccount:  m.users,
		Report:       m.reports,
	}
	return m, repo
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}
