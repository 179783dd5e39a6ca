package models

// Role identifiers carried in access tokens and in allowedRoles lists
const (
	RoleSuperAdmin   = "super-admin"
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleHealthWorker = "health-worker"
	RoleVolunteer    = "volunteer"
	RoleCommunity    = "community-member"
)

// ManagementRoles may create, edit, delete and change the status of surveys and sessions
var ManagementRoles = []string{RoleSuperAdmin, RoleAdmin, RoleManager}
