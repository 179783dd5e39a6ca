package auth

import (
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
)

// AuthorizationService decides what an actor may do with surveys, responses
// and community sessions. The upstream backend enforces the same rules; the
// gateway checks them first so a forbidden request never leaves the process.
type AuthorizationService struct {
	managementRoles []string
}

// NewAuthorizationService creates a new AuthorizationService. With no roles
// given, models.ManagementRoles apply.
func NewAuthorizationService(managementRoles ...string) *AuthorizationService {
	if len(managementRoles) == 0 {
		managementRoles = models.ManagementRoles
	}
	return &AuthorizationService{managementRoles: managementRoles}
}

// CanManage reports whether the actor may create, edit, delete or change the status of resources
func (s *AuthorizationService) CanManage(actor *models.Actor) bool {
	return actor != nil && actor.HasRole(s.managementRoles...)
}

// RequireManager returns a permission error unless the actor can manage
func (s *AuthorizationService) RequireManager(actor *models.Actor) error {
	if !s.CanManage(actor) {
		return apperrors.NewForbiddenError("you do not have permission to manage this resource")
	}
	return nil
}

// CanRespond reports whether the actor's roles intersect the survey's allowed roles
func (s *AuthorizationService) CanRespond(actor *models.Actor, survey *models.Survey) bool {
	return actor != nil && survey.IsAllowedFor(actor.Roles)
}

// RequireRespondent returns a permission error unless the actor may answer the survey
func (s *AuthorizationService) RequireRespondent(actor *models.Actor, survey *models.Survey) error {
	if !s.CanRespond(actor, survey) {
		return apperrors.NewForbiddenError("this survey is not available for your role")
	}
	return nil
}

// CanViewResponse reports whether the actor may review a response: its author or a manager
func (s *AuthorizationService) CanViewResponse(actor *models.Actor, response *models.Response) bool {
	if actor == nil {
		return false
	}
	return response.UserID == actor.UserID || s.CanManage(actor)
}
