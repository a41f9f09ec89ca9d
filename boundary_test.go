package identity_test

import (
	"context"
	"errors"
	"testing"

	identity "github.com/krwicher/wil-fasting-group"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func actorCtx(role identity.Role) (context.Context, identity.Actor) {
	actor := identity.Actor{ID: uuid.New(), Role: role}
	return identity.WithActor(context.Background(), actor), actor
}

func TestBoundaryAuthenticate(t *testing.T) {
	boundary := identity.NewPrivilegeBoundary(new(MockIdentityStore))

	_, err := boundary.Authenticate(context.Background())
	require.ErrorIs(t, err, identity.ErrUnauthenticated)

	ctx, _ := actorCtx(identity.RoleApproved)
	_, err = boundary.Authenticate(ctx)
	require.ErrorIs(t, err, identity.ErrForbidden, "approved members get no partial admin access")

	ctx, actor := actorCtx(identity.RoleAdmin)
	got, err := boundary.Authenticate(ctx)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestBoundaryAuthorizeRoleChange(t *testing.T) {
	boundary := identity.NewPrivilegeBoundary(new(MockIdentityStore))

	tests := []struct {
		acting   identity.Role
		target   identity.Role
		expected bool
	}{
		{identity.RoleAdmin, identity.RolePending, true},
		{identity.RoleAdmin, identity.RoleApproved, true},
		{identity.RoleAdmin, identity.RoleAdmin, false},
		{identity.RoleAdmin, identity.RoleSuperAdmin, false},
		{identity.RoleSuperAdmin, identity.RolePending, true},
		{identity.RoleSuperAdmin, identity.RoleApproved, true},
		{identity.RoleSuperAdmin, identity.RoleAdmin, true},
		{identity.RoleSuperAdmin, identity.RoleSuperAdmin, true},
		{identity.RoleApproved, identity.RoleApproved, false},
		{identity.RoleSuperAdmin, identity.Role("moderator"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, boundary.AuthorizeRoleChange(tt.acting, tt.target),
			"%s granting %s", tt.acting, tt.target)
	}
}

func TestBoundarySetRole(t *testing.T) {
	store := new(MockIdentityStore)
	sink := &capturingSink{}
	boundary := identity.NewPrivilegeBoundary(store,
		identity.WithBoundaryActivitySink(sink))

	ctx, actor := actorCtx(identity.RoleAdmin)
	target := uuid.New()

	store.On("GetAccount", mock.Anything, target).
		Return(&identity.Account{ID: target, Role: identity.RolePending}, nil).Once()
	store.On("UpdateAccountRole", mock.Anything, target, identity.RoleApproved).
		Return(&identity.Account{ID: target, Role: identity.RoleApproved}, nil).Once()

	account, err := boundary.SetRole(ctx, target, identity.RoleApproved)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleApproved, account.Role)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, identity.ActivityEventRoleChanged, event.EventType)
	assert.Equal(t, actor.ID.String(), event.Actor.ID)
	assert.Equal(t, target.String(), event.AccountID)
	assert.Equal(t, identity.RolePending, event.FromRole)
	assert.Equal(t, identity.RoleApproved, event.ToRole)

	store.AssertExpectations(t)
}

func TestBoundarySetRoleAdminCannotGrantAdmin(t *testing.T) {
	store := new(MockIdentityStore)
	sink := &capturingSink{}
	boundary := identity.NewPrivilegeBoundary(store,
		identity.WithBoundaryActivitySink(sink))

	ctx, _ := actorCtx(identity.RoleAdmin)
	target := uuid.New()

	_, err := boundary.SetRole(ctx, target, identity.RoleAdmin)
	require.ErrorIs(t, err, identity.ErrForbidden)

	require.Len(t, sink.events, 1, "denied attempts are audited")
	assert.Equal(t, identity.ActivityEventRoleChangeDenied, sink.events[0].EventType)

	store.AssertNotCalled(t, "UpdateAccountRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestBoundarySetRoleSuperAdminGrantsAdmin(t *testing.T) {
	store := new(MockIdentityStore)
	boundary := identity.NewPrivilegeBoundary(store)

	ctx, _ := actorCtx(identity.RoleSuperAdmin)
	target := uuid.New()

	store.On("GetAccount", mock.Anything, target).
		Return(&identity.Account{ID: target, Role: identity.RoleApproved}, nil).Once()
	store.On("UpdateAccountRole", mock.Anything, target, identity.RoleAdmin).
		Return(&identity.Account{ID: target, Role: identity.RoleAdmin}, nil).Once()

	account, err := boundary.SetRole(ctx, target, identity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, account.Role)
}

func TestBoundarySetRoleInvalidRole(t *testing.T) {
	store := new(MockIdentityStore)
	boundary := identity.NewPrivilegeBoundary(store)

	ctx, _ := actorCtx(identity.RoleSuperAdmin)

	_, err := boundary.SetRole(ctx, uuid.New(), identity.Role("moderator"))
	require.ErrorIs(t, err, identity.ErrInvalidRole)

	store.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
}

func TestBoundarySetRoleAccountNotFound(t *testing.T) {
	store := new(MockIdentityStore)
	boundary := identity.NewPrivilegeBoundary(store)

	ctx, _ := actorCtx(identity.RoleAdmin)
	target := uuid.New()

	store.On("GetAccount", mock.Anything, target).
		Return(nil, repository.NewRecordNotFound()).Once()

	_, err := boundary.SetRole(ctx, target, identity.RoleApproved)
	require.ErrorIs(t, err, identity.ErrAccountNotFound)
}

func TestBoundarySetRoleUpstreamFailure(t *testing.T) {
	store := new(MockIdentityStore)
	boundary := identity.NewPrivilegeBoundary(store)

	ctx, _ := actorCtx(identity.RoleAdmin)
	target := uuid.New()

	store.On("GetAccount", mock.Anything, target).
		Return(&identity.Account{ID: target, Role: identity.RolePending}, nil).Once()
	store.On("UpdateAccountRole", mock.Anything, target, identity.RoleApproved).
		Return(nil, errors.New("connection reset")).Once()

	_, err := boundary.SetRole(ctx, target, identity.RoleApproved)
	require.Error(t, err)
	assert.True(t, identity.IsUpstream(err))
}

func TestBoundaryDeleteAccount(t *testing.T) {
	store := new(MockIdentityStore)
	sink := &capturingSink{}
	boundary := identity.NewPrivilegeBoundary(store,
		identity.WithBoundaryActivitySink(sink))

	ctx, _ := actorCtx(identity.RoleAdmin)
	target := uuid.New()

	store.On("GetAccount", mock.Anything, target).
		Return(&identity.Account{ID: target, Role: identity.RolePending}, nil).Once()
	store.On("DeleteAccount", mock.Anything, target).
		Return(nil).Once()

	require.NoError(t, boundary.DeleteAccount(ctx, target))

	require.Len(t, sink.events, 1)
	assert.Equal(t, identity.ActivityEventAccountDeleted, sink.events[0].EventType)
	assert.Equal(t, identity.RolePending, sink.events[0].FromRole)
}

func TestBoundaryDeleteAccountDenied(t *testing.T) {
	store := new(MockIdentityStore)
	sink := &capturingSink{}
	boundary := identity.NewPrivilegeBoundary(store,
		identity.WithBoundaryActivitySink(sink))

	ctx, _ := actorCtx(identity.RoleApproved)

	err := boundary.DeleteAccount(ctx, uuid.New())
	require.ErrorIs(t, err, identity.ErrForbidden)

	require.Len(t, sink.events, 1)
	assert.Equal(t, identity.ActivityEventDeleteDenied, sink.events[0].EventType)

	store.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything)
}

func TestBoundaryDeleteAccountNotFound(t *testing.T) {
	store := new(MockIdentityStore)
	boundary := identity.NewPrivilegeBoundary(store)

	ctx, _ := actorCtx(identity.RoleAdmin)
	target := uuid.New()

	store.On("GetAccount", mock.Anything, target).
		Return(nil, repository.NewRecordNotFound()).Once()

	err := boundary.DeleteAccount(ctx, target)
	require.ErrorIs(t, err, identity.ErrAccountNotFound)
}
