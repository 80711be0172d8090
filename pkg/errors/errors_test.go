package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueConstraint(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_schedules_vet_slot"})

	name, ok := UniqueConstraint(err)
	if !ok {
		t.Fatal("期望识别为唯一约束冲突")
	}
	if name != "uq_schedules_vet_slot" {
		t.Errorf("期望约束名 uq_schedules_vet_slot，实际=%s", name)
	}
}

func TestUniqueConstraint_OtherErrors(t *testing.T) {
	if _, ok := UniqueConstraint(errors.New("boom")); ok {
		t.Error("普通错误不应识别为唯一约束冲突")
	}
	if _, ok := UniqueConstraint(&pgconn.PgError{Code: "23503"}); ok {
		t.Error("外键冲突不应识别为唯一约束冲突")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("期望识别为外键冲突")
	}
	if IsForeignKeyViolation(ErrOptimisticLock) {
		t.Error("乐观锁错误不应识别为外键冲突")
	}
}
