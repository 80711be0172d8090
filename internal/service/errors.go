package service

import (
	"errors"
	"strings"

	pkgerrors "animal-care-clinic/pkg/errors"
)

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 累积的字段校验错误，存在任意一条即阻止持久化
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "参数校验失败: " + strings.Join(msgs, "; ")
}

// Add 追加一条字段错误
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasField 是否存在指定字段的错误
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err 无错误时返回 nil，便于 return v.Err()
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidationError 提取 *ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ErrConcurrencyConflict 乐观锁冲突，与仓储层返回的错误为同一值
var ErrConcurrencyConflict = pkgerrors.ErrOptimisticLock

// ── 唯一约束名 ──

const (
	constraintVetEmail      = "uq_veterinarians_email"
	constraintVetPhone      = "uq_veterinarians_phone"
	constraintOwnerEmail    = "uq_owners_email"
	constraintOwnerPhone    = "uq_owners_phone"
	constraintScheduleSlot  = "uq_schedules_vet_slot"
	constraintLiveSchedule  = "uq_appointments_live_schedule"
	constraintUsername      = "uq_user_accounts_username"
	msgDuplicateEmail       = "邮箱已被使用"
	msgDuplicatePhone       = "电话号码已被使用"
	msgDuplicateSlot        = "该兽医在此日期的此时间段已存在排班"
	msgVeterinarianNotFound = "兽医不存在"
)

// duplicateFields 将已知唯一约束冲突转换为字段错误
func duplicateFields(err error) (*ValidationError, bool) {
	name, ok := pkgerrors.UniqueConstraint(err)
	if !ok {
		return nil, false
	}
	v := &ValidationError{}
	switch name {
	case constraintVetEmail, constraintOwnerEmail:
		v.Add("email", msgDuplicateEmail)
	case constraintVetPhone, constraintOwnerPhone:
		v.Add("phone_number", msgDuplicatePhone)
	case constraintScheduleSlot:
		v.Add("time_slot", msgDuplicateSlot)
	case constraintUsername:
		v.Add("username", "用户名已存在")
	default:
		return nil, false
	}
	return v, true
}

// businessErrors 可预期的业务拒绝，不记录错误日志
var businessErrors = []error{
	ErrConcurrencyConflict,
	ErrVeterinarianNotFound, ErrVeterinarianInUse,
	ErrOwnerNotFound, ErrOwnerHasAnimals,
	ErrAnimalNotFound, ErrAnimalInUse,
	ErrScheduleNotFound, ErrScheduleNotAvailable, ErrScheduleInUse,
	ErrVeterinarianMismatch, ErrOutsideClinicHours,
	ErrAppointmentNotFound, ErrAppointmentImmutable, ErrAppointmentHasVisits,
	ErrVisitHistoryNotFound,
}

func isBusinessError(err error) bool {
	if _, ok := AsValidationError(err); ok {
		return true
	}
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
