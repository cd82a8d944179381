package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleAdmin, PermissionSettingsManage, true},
		{RoleAdmin, PermissionAttendanceClose, true},
		{RoleSupervisor, PermissionAttendanceApprove, true},
		{RoleSupervisor, PermissionLocationManage, false},
		{RoleEmployee, PermissionAttendanceCreate, true},
		{RoleEmployee, PermissionAttendanceApprove, false},
		{Role("intern"), PermissionAttendanceCreate, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission), "%s / %s", tt.role, tt.permission)
	}
}

func TestSameDivision(t *testing.T) {
	a, b, empty := "div-a", "div-b", ""

	assert.True(t, SameDivision(&a, &a))
	assert.False(t, SameDivision(&a, &b))
	assert.False(t, SameDivision(&a, nil))
	assert.False(t, SameDivision(nil, nil))
	assert.False(t, SameDivision(&empty, &empty))
}
