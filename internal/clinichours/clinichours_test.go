package clinichours

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// 2025-03-03 周一，2025-03-08 周六，2025-03-09 周日
var (
	monday   = day("2025-03-03")
	saturday = day("2025-03-08")
	sunday   = day("2025-03-09")
)

func TestValidate_MondayOpening(t *testing.T) {
	res := Validate(monday, "09:00")
	if !res.Valid {
		t.Fatalf("周一 09:00 应合法: %+v", res.Violations)
	}
	want := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	if !res.Time.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, res.Time)
	}
}

func TestValidate_LastSlot(t *testing.T) {
	if res := Validate(monday, "16:30"); !res.Valid {
		t.Errorf("16:30 应合法: %+v", res.Violations)
	}
}

func TestValidate_ClosingTimeRejected(t *testing.T) {
	res := Validate(monday, "17:00")
	if res.Valid {
		t.Fatal("17:00 应不合法")
	}
	assertField(t, res, FieldTimeSlot)
}

func TestValidate_BeforeOpeningRejected(t *testing.T) {
	res := Validate(monday, "08:30")
	if res.Valid {
		t.Fatal("08:30 应不合法")
	}
	assertField(t, res, FieldTimeSlot)
}

func TestValidate_SaturdayRejected(t *testing.T) {
	res := Validate(saturday, "10:00")
	if res.Valid {
		t.Fatal("周六应不合法")
	}
	assertField(t, res, FieldDate)
}

func TestValidate_SundayRejected(t *testing.T) {
	res := Validate(sunday, "13:00")
	if res.Valid {
		t.Fatal("周日应不合法")
	}
	if len(res.Violations) != 1 || res.Violations[0].Field != FieldDate {
		t.Errorf("期望仅有 date 违规，实际 %+v", res.Violations)
	}
}

func TestValidate_InvalidFormat(t *testing.T) {
	for _, slot := range []string{"9:00", "09:0", "0900", "", "24:00", "ab:cd", "09:00 "} {
		res := Validate(monday, slot)
		if res.Valid {
			t.Errorf("%q 应格式无效", slot)
			continue
		}
		assertField(t, res, FieldTimeSlot)
	}
}

func TestValidate_Granularity(t *testing.T) {
	res := Validate(monday, "09:15")
	if res.Valid {
		t.Fatal("09:15 不在 30 分钟粒度上")
	}
	assertField(t, res, FieldTimeSlot)
}

func TestValidate_AccumulatesViolations(t *testing.T) {
	res := Validate(sunday, "18:00")
	if res.Valid {
		t.Fatal("应不合法")
	}
	if len(res.Violations) != 2 {
		t.Errorf("期望 2 条违规，实际 %d: %+v", len(res.Violations), res.Violations)
	}
}

func TestSlots(t *testing.T) {
	slots := Slots()
	if len(slots) != 16 {
		t.Fatalf("期望 16 个时段，实际 %d", len(slots))
	}
	if slots[0] != "09:00" || slots[15] != "16:30" {
		t.Errorf("首尾时段错误: %s .. %s", slots[0], slots[15])
	}
	for _, s := range slots {
		if res := Validate(monday, s); !res.Valid {
			t.Errorf("%s 应合法", s)
		}
	}
}

func TestStart_InLocation(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	start, ok := Start(monday, "09:30", loc)
	if !ok {
		t.Fatal("Start 应成功")
	}
	if start.Hour() != 9 || start.Minute() != 30 || start.Location() != loc {
		t.Errorf("Start 结果错误: %v", start)
	}
	if _, ok := Start(monday, "bad", loc); ok {
		t.Error("非法时段应返回 false")
	}
}

func assertField(t *testing.T, res Result, field string) {
	t.Helper()
	for _, v := range res.Violations {
		if v.Field == field {
			return
		}
	}
	t.Errorf("期望存在字段 %s 的违规，实际 %+v", field, res.Violations)
}
