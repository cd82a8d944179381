package user

type Permission string

const (
	// Attendance
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceApprove Permission = "attendance.approve"
	PermissionAttendanceClose   Permission = "attendance.close"

	// Logbook
	PermissionLogbookCreate Permission = "logbook.create"

	// Administration
	PermissionLocationManage Permission = "location.manage"
	PermissionSettingsManage Permission = "settings.manage"

	// Reports
	PermissionReportExport Permission = "report.export"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionAttendanceClose,
		PermissionLogbookCreate,
		PermissionLocationManage,
		PermissionSettingsManage,
		PermissionReportExport,
	},
	RoleSupervisor: {
		// Division scope is enforced by the attendance service
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionLogbookCreate,
		PermissionReportExport,
	},
	RoleEmployee: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionLogbookCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
