package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
)

func TestRequireManager(t *testing.T) {
	authz := NewAuthorizationService()

	assert.NoError(t, authz.RequireManager(&models.Actor{Roles: []string{models.RoleAdmin}}))
	assert.NoError(t, authz.RequireManager(&models.Actor{Roles: []string{models.RoleSuperAdmin}}))

	err := authz.RequireManager(&models.Actor{Roles: []string{models.RoleVolunteer}})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.Error(t, authz.RequireManager(nil))
}

func TestCustomManagementRoles(t *testing.T) {
	authz := NewAuthorizationService("coordinator")
	assert.True(t, authz.CanManage(&models.Actor{Roles: []string{"coordinator"}}))
	assert.False(t, authz.CanManage(&models.Actor{Roles: []string{models.RoleAdmin}}))
}

func TestRespondentAndReviewRules(t *testing.T) {
	authz := NewAuthorizationService()
	survey := &models.Survey{AllowedRoles: []string{models.RoleHealthWorker}}
	worker := &models.Actor{UserID: "u1", Roles: []string{models.RoleHealthWorker}}
	member := &models.Actor{UserID: "u2", Roles: []string{models.RoleCommunity}}
	manager := &models.Actor{UserID: "u3", Roles: []string{models.RoleManager}}

	assert.NoError(t, authz.RequireRespondent(worker, survey))
	assert.True(t, errors.Is(authz.RequireRespondent(member, survey), apperrors.ErrPermissionDenied))

	response := &models.Response{UserID: "u1"}
	assert.True(t, authz.CanViewResponse(worker, response))
	assert.False(t, authz.CanViewResponse(member, response))
	assert.True(t, authz.CanViewResponse(manager, response))
}
