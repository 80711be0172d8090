package policy

import (
	"testing"

	"animal-care-clinic/internal/model"
)

func TestAllowed_ReadsForEveryRole(t *testing.T) {
	reads := []Operation{VeterinarianRead, OwnerRead, AnimalRead, ScheduleRead, AppointmentRead, VisitRead, CalendarRead}
	for _, op := range reads {
		for _, role := range allRoles {
			if !Allowed(op, role) {
				t.Errorf("%s 应允许 %s", op, role)
			}
		}
	}
}

func TestAllowed_MasterDataWrites(t *testing.T) {
	writes := []Operation{VeterinarianWrite, OwnerWrite, AnimalWrite, ScheduleWrite, AppointmentWrite}
	for _, op := range writes {
		if !Allowed(op, model.RoleAdmin) || !Allowed(op, model.RoleSecretary) {
			t.Errorf("%s 应允许 admin 与 secretary", op)
		}
		if Allowed(op, model.RoleVeterinarian) {
			t.Errorf("%s 不应允许 veterinarian", op)
		}
	}
}

func TestAllowed_VisitWrite(t *testing.T) {
	if !Allowed(VisitWrite, model.RoleAdmin) || !Allowed(VisitWrite, model.RoleVeterinarian) {
		t.Error("visit:write 应允许 admin 与 veterinarian")
	}
	if Allowed(VisitWrite, model.RoleSecretary) {
		t.Error("visit:write 不应允许 secretary")
	}
}

func TestAllowed_ReportAdminOnly(t *testing.T) {
	if !Allowed(ReportRead, model.RoleAdmin) {
		t.Error("report:read 应允许 admin")
	}
	if Allowed(ReportRead, model.RoleSecretary) || Allowed(ReportRead, model.RoleVeterinarian) {
		t.Error("report:read 仅限 admin")
	}
}

func TestAllowed_UnknownDenied(t *testing.T) {
	if Allowed(OwnerRead, "guest") {
		t.Error("未知角色应被拒绝")
	}
	if Allowed(Operation("owner:purge"), model.RoleAdmin) {
		t.Error("未知操作应被拒绝")
	}
	if Allowed(OwnerRead, "") {
		t.Error("空角色应被拒绝")
	}
}

func TestOperations_Complete(t *testing.T) {
	if got := len(Operations()); got != 14 {
		t.Errorf("期望 14 个操作，实际 %d", got)
	}
}
