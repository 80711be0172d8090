package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"animal-care-clinic/internal/clinichours"
	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
)

const (
	calendarDefaultDays = 30
	calendarMaxDays     = 366
	icsProductID        = "-//Animal Care Clinic//Veterinarian Calendar//ZH"
)

// CalendarService 兽医日历业务接口
type CalendarService interface {
	VetCalendar(ctx context.Context, vetID int64, req *dto.CalendarRequest) (*dto.CalendarResponse, error)
	// ExportICS 导出 iCalendar，每个 Booked/Completed 预约一个 VEVENT
	ExportICS(ctx context.Context, vetID int64, req *dto.CalendarRequest) ([]byte, string, error)
}

type calendarService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例；loc 为诊所时区
func NewCalendarService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &calendarService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// ────────────────────── VetCalendar ──────────────────────

func (s *calendarService) VetCalendar(ctx context.Context, vetID int64, req *dto.CalendarRequest) (*dto.CalendarResponse, error) {
	vet, entries, from, to, err := s.load(ctx, vetID, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.CalendarResponse{
		VeterinarianID: vet.ID,
		Veterinarian:   vet.DisplayName(),
		From:           formatDate(from),
		To:             formatDate(to),
		Entries:        make([]dto.CalendarEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.CalendarEntryResponse{
			ScheduleID:        e.ScheduleID,
			Date:              formatDate(e.Date),
			TimeSlot:          e.TimeSlot,
			SlotStatus:        e.SlotStatus,
			AppointmentID:     e.AppointmentID,
			AnimalID:          e.AnimalID,
			AnimalName:        e.AnimalName,
			Reason:            e.Reason,
			AppointmentStatus: e.AppointmentStatus,
		})
	}
	return resp, nil
}

// ────────────────────── ExportICS ──────────────────────

func (s *calendarService) ExportICS(ctx context.Context, vetID int64, req *dto.CalendarRequest) ([]byte, string, error) {
	vet, entries, from, to, err := s.load(ctx, vetID, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(vet.DisplayName())
	cal.SetXWRTimezone(s.loc.String())

	stamp := s.now().UTC()
	for _, e := range entries {
		if e.AppointmentID == nil || e.AppointmentStatus == nil {
			continue
		}
		status := *e.AppointmentStatus
		if status != model.AppointmentBooked && status != model.AppointmentCompleted {
			continue
		}
		start, ok := clinichours.Start(e.Date, e.TimeSlot, s.loc)
		if !ok {
			s.logger.Warn("日历条目时段无效，已跳过", zap.Int64("schedule_id", e.ScheduleID), zap.String("time_slot", e.TimeSlot))
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("appointment-%d@animal-care-clinic", *e.AppointmentID))
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(clinichours.SlotMinutes * time.Minute))
		event.SetSummary(eventSummary(e))
		if e.Reason != nil {
			event.SetDescription(*e.Reason)
		}
		if status == model.AppointmentCompleted {
			event.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			event.SetStatus(ics.ObjectStatusTentative)
		}
	}

	filename := fmt.Sprintf("vet_%d_%s_%s.ics", vet.ID, from.Format("20060102"), to.Format("20060102"))
	return []byte(cal.Serialize()), filename, nil
}

// ── 内部辅助方法 ──

// load 校验兽医与查询区间后读取日历视图
func (s *calendarService) load(ctx context.Context, vetID int64, req *dto.CalendarRequest) (*model.Veterinarian, []model.VetCalendarEntry, time.Time, time.Time, error) {
	var zero time.Time

	vet, err := s.repo.Veterinarian.GetByID(ctx, vetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, zero, zero, ErrVeterinarianNotFound
		}
		s.logger.Error("查询兽医失败", zap.Int64("id", vetID), zap.Error(err))
		return nil, nil, zero, zero, err
	}

	from, to, err := s.window(req)
	if err != nil {
		return nil, nil, zero, zero, err
	}

	entries, err := s.repo.Schedule.ListCalendar(ctx, vetID, from, to)
	if err != nil {
		s.logger.Error("查询兽医日历失败", zap.Int64("veterinarian_id", vetID), zap.Error(err))
		return nil, nil, zero, zero, err
	}
	return vet, entries, from, to, nil
}

// window 解析 [from, to]，缺省为诊所时区今天起 30 天
func (s *calendarService) window(req *dto.CalendarRequest) (time.Time, time.Time, error) {
	ve := &ValidationError{}
	fromPtr := parseOptionalDate(ve, "from", req.From)
	toPtr := parseOptionalDate(ve, "to", req.To)
	if err := ve.Err(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := s.now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if fromPtr != nil {
		from = *fromPtr
	}
	to := from.AddDate(0, 0, calendarDefaultDays)
	if toPtr != nil {
		to = *toPtr
	}

	if to.Before(from) {
		ve.Add("to", "结束日期不能早于开始日期")
	} else if to.Sub(from) > calendarMaxDays*24*time.Hour {
		ve.Add("to", fmt.Sprintf("查询区间不能超过 %d 天", calendarMaxDays))
	}
	return from, to, ve.Err()
}

func eventSummary(e model.VetCalendarEntry) string {
	if e.AnimalName != nil {
		return "门诊预约: " + *e.AnimalName
	}
	return "门诊预约"
}
