package rbac

import (
	"testing"

	"cep360-payroll/internal/domain"
	"cep360-payroll/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	e, err := infra.NewEnforcer(infra.RoleModel)
	require.NoError(t, err)

	svc, err := NewService(e, DefaultPolicies, RoleInheritance)
	require.NoError(t, err)
	return svc
}

func TestService_Enforce(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		role     string
		resource string
		action   string
		want     bool
	}{
		{"admin", "invoice", "generate", true},
		{"admin", "invoice", "delete", true},
		{"admin", "assignment", "read", true},
		{"program_manager", "invoice", "update", true},
		{"program_manager", "invoice", "generate", false},
		{"program_manager", "invoice", "read_own", true},
		{"resource_manager", "invoice", "read", true},
		{"resource_manager", "invoice", "update", false},
		{"agent", "invoice", "read_own", true},
		{"agent", "invoice", "read", false},
		{"agent", "assignment", "read", false},
		{"unknown", "invoice", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+":"+tt.resource+":"+tt.action, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{
				UserID:   "u-1",
				Role:     tt.role,
				Resource: tt.resource,
				Action:   tt.action,
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestService_PermissionsForRole(t *testing.T) {
	svc := newTestService(t)

	perms, err := svc.PermissionsForRole("resource_manager")
	assert.NoError(t, err)
	assert.Equal(t, []domain.PermissionResponse{
		{Resource: "assignment", Action: "read"},
		{Resource: "attendance", Action: "check_in"},
		{Resource: "attendance", Action: "read"},
		{Resource: "attendance", Action: "read_own"},
		{Resource: "invoice", Action: "read"},
		{Resource: "invoice", Action: "read_own"},
	}, perms)
}
