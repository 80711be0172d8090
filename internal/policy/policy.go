// Package policy 角色权限表：(操作, 角色) → 是否允许。
package policy

import "animal-care-clinic/internal/model"

// Operation 受控操作
type Operation string

const (
	VeterinarianRead  Operation = "veterinarian:read"
	VeterinarianWrite Operation = "veterinarian:write"
	OwnerRead         Operation = "owner:read"
	OwnerWrite        Operation = "owner:write"
	AnimalRead        Operation = "animal:read"
	AnimalWrite       Operation = "animal:write"
	ScheduleRead      Operation = "schedule:read"
	ScheduleWrite     Operation = "schedule:write"
	AppointmentRead   Operation = "appointment:read"
	AppointmentWrite  Operation = "appointment:write"
	VisitRead         Operation = "visit:read"
	VisitWrite        Operation = "visit:write"
	CalendarRead      Operation = "calendar:read"
	ReportRead        Operation = "report:read"
)

var allRoles = []string{model.RoleAdmin, model.RoleSecretary, model.RoleVeterinarian}

// table 未列出的 (操作, 角色) 一律拒绝
var table = map[Operation]map[string]bool{
	VeterinarianRead:  roles(allRoles...),
	OwnerRead:         roles(allRoles...),
	AnimalRead:        roles(allRoles...),
	ScheduleRead:      roles(allRoles...),
	AppointmentRead:   roles(allRoles...),
	VisitRead:         roles(allRoles...),
	CalendarRead:      roles(allRoles...),
	VeterinarianWrite: roles(model.RoleAdmin, model.RoleSecretary),
	OwnerWrite:        roles(model.RoleAdmin, model.RoleSecretary),
	AnimalWrite:       roles(model.RoleAdmin, model.RoleSecretary),
	ScheduleWrite:     roles(model.RoleAdmin, model.RoleSecretary),
	AppointmentWrite:  roles(model.RoleAdmin, model.RoleSecretary),
	VisitWrite:        roles(model.RoleAdmin, model.RoleVeterinarian),
	ReportRead:        roles(model.RoleAdmin),
}

func roles(rs ...string) map[string]bool {
	m := make(map[string]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// Allowed 判断角色是否可执行操作
func Allowed(op Operation, role string) bool {
	return table[op][role]
}

// Operations 返回表中所有操作
func Operations() []Operation {
	ops := make([]Operation, 0, len(table))
	for op := range table {
		ops = append(ops, op)
	}
	return ops
}
