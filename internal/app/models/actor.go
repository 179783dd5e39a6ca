package models

import "strings"

// Actor is the authenticated requester on whose behalf the gateway calls upstream
type Actor struct {
	UserID string
	Email  string
	Roles  []string
	// Token is the raw bearer token, forwarded to the upstream backend
	Token string
}

// HasRole reports whether the actor holds any of roles
func (a *Actor) HasRole(roles ...string) bool {
	for _, held := range a.Roles {
		for _, r := range roles {
			if strings.EqualFold(held, r) {
				return true
			}
		}
	}
	return false
}

// CanManage reports whether the actor holds a management role
func (a *Actor) CanManage() bool {
	return a.HasRole(ManagementRoles...)
}
