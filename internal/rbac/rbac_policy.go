package rbac

import "cep360-payroll/internal/employee"

type Policy struct {
	Role     string
	Resource string
	Action   string
}

// RoleInheritance lists (role, inherited role) pairs. Each role receives
// every permission of the roles below it.
var RoleInheritance = [][2]string{
	{employee.RoleAdmin, employee.RoleProgramManager},
	{employee.RoleProgramManager, employee.RoleResourceManager},
	{employee.RoleResourceManager, employee.RoleAgent},
}

var DefaultPolicies = []Policy{
	{employee.RoleAgent, "invoice", "read_own"},
	{employee.RoleAgent, "attendance", "read_own"},
	{employee.RoleAgent, "attendance", "check_in"},

	{employee.RoleResourceManager, "invoice", "read"},
	{employee.RoleResourceManager, "assignment", "read"},
	{employee.RoleResourceManager, "attendance", "read"},

	{employee.RoleProgramManager, "invoice", "update"},
	{employee.RoleProgramManager, "invoice", "document"},

	{employee.RoleAdmin, "invoice", "*"},
}
