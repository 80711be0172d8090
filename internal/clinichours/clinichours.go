// Package clinichours 校验诊所营业时段：周一至周五，[09:00, 17:00)，30 分钟粒度。
package clinichours

import (
	"fmt"
	"regexp"
	"time"
)

const (
	OpenHour     = 9
	CloseHour    = 17
	SlotMinutes  = 30
	SlotLayout   = "15:04"
	dateLayout   = "2006-01-02"
	minutesInDay = 24 * 60
)

// 错误信息所属字段
const (
	FieldDate     = "date"
	FieldTimeSlot = "time_slot"
)

var slotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Violation 单条违规
type Violation struct {
	Field   string
	Message string
}

// Result 校验结果；Valid 为 true 时 Time 为 date 当天的时段起点
type Result struct {
	Valid      bool
	Time       time.Time
	Violations []Violation
}

// Validate 校验 (date, "HH:mm")，收集全部违规而不是遇错即停
func Validate(date time.Time, slot string) Result {
	var res Result

	if !IsOpenDay(date.Weekday()) {
		res.Violations = append(res.Violations, Violation{
			Field:   FieldDate,
			Message: fmt.Sprintf("诊所%s不营业，仅周一至周五可预约", weekdayName(date.Weekday())),
		})
	}

	res.Violations = append(res.Violations, ValidateSlot(slot)...)

	if len(res.Violations) > 0 {
		return res
	}

	res.Valid = true
	res.Time, _ = Start(date, slot, date.Location())
	return res
}

// ValidateSlot 仅校验时间段本身：格式、营业区间、粒度
func ValidateSlot(slot string) []Violation {
	minutes, ok := ParseSlot(slot)
	if !ok {
		return []Violation{{
			Field:   FieldTimeSlot,
			Message: fmt.Sprintf("时间段 %q 格式无效，应为 HH:mm", slot),
		}}
	}
	if minutes < OpenHour*60 || minutes >= CloseHour*60 {
		return []Violation{{
			Field:   FieldTimeSlot,
			Message: fmt.Sprintf("时间段 %s 不在营业时间 09:00-17:00 内", slot),
		}}
	}
	if minutes%SlotMinutes != 0 {
		return []Violation{{
			Field:   FieldTimeSlot,
			Message: fmt.Sprintf("时间段 %s 必须为整点或半点", slot),
		}}
	}
	return nil
}

// ParseSlot 严格解析 HH:mm，返回自零点起的分钟数
func ParseSlot(slot string) (int, bool) {
	if !slotPattern.MatchString(slot) {
		return 0, false
	}
	t, err := time.Parse(SlotLayout, slot)
	if err != nil {
		return 0, false
	}
	minutes := t.Hour()*60 + t.Minute()
	if minutes >= minutesInDay {
		return 0, false
	}
	return minutes, true
}

// ParseDate 解析 yyyy-MM-dd
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// IsOpenDay 周一至周五营业
func IsOpenDay(w time.Weekday) bool {
	return w >= time.Monday && w <= time.Friday
}

// Slots 返回全部合法时段 09:00 .. 16:30
func Slots() []string {
	slots := make([]string, 0, (CloseHour-OpenHour)*60/SlotMinutes)
	for m := OpenHour * 60; m < CloseHour*60; m += SlotMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// Start 返回 date 当天 slot 对应的时刻（位于 loc 时区）；slot 非法时返回 false
func Start(date time.Time, slot string, loc *time.Location) (time.Time, bool) {
	minutes, ok := ParseSlot(slot)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc), true
}

func weekdayName(w time.Weekday) string {
	return [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}[w]
}
