package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/identity"
	"github.com/forvaidya/icomment/internal/service/moderation"
	"github.com/forvaidya/icomment/internal/service/servicetest"
	"github.com/forvaidya/icomment/internal/service/user"
)

func newService(store *servicetest.Store) user.Service {
	return user.NewService(store.UserRepo(), moderation.NewService(store.ModerationLogRepo()))
}

func TestEnsureUserCreatesOnFirstAuthentication(t *testing.T) {
	store := servicetest.NewStore()
	svc := newService(store)
	ctx := context.Background()

	claims := &identity.Claims{
		Subject:  "idp|alice",
		Username: "alice",
		Kind:     domain.UserKindFederated,
	}

	created, err := svc.EnsureUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
	assert.False(t, created.IsAdmin, "authentication never grants admin")
	require.NotNil(t, created.Subject)
	assert.Equal(t, "idp|alice", *created.Subject)

	// A second authentication with the same subject reuses the record.
	again, err := svc.EnsureUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, store.Users, 1)
}

func TestEnsureUserRejectsEmptyClaims(t *testing.T) {
	store := servicetest.NewStore()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.EnsureUser(ctx, &identity.Claims{Username: "no-subject"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.EnsureUser(ctx, &identity.Claims{Subject: "idp|x", Username: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetAdminIsAdminOnlyAndLogged(t *testing.T) {
	store := servicetest.NewStore()
	svc := newService(store)
	admin := store.AddUser("admin", true)
	target := store.AddUser("target", false)
	bystander := store.AddUser("bystander", false)
	ctx := context.Background()

	_, err := svc.SetAdmin(ctx, target.ID, bystander.ID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	promoted, err := svc.SetAdmin(ctx, target.ID, admin.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)
	assert.Equal(t, domain.ActionAdminGrant, store.Logs[len(store.Logs)-1].Action)

	demoted, err := svc.SetAdmin(ctx, target.ID, admin.ID, false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)
	assert.Equal(t, domain.ActionAdminRevoke, store.Logs[len(store.Logs)-1].Action)

	_, err = svc.SetAdmin(ctx, uuid.New(), admin.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRefusesUsersWithAuthoredContent(t *testing.T) {
	store := servicetest.NewStore()
	svc := newService(store)
	admin := store.AddUser("admin", true)
	author := store.AddUser("author", false)
	ctx := context.Background()

	d := &domain.Discussion{ID: uuid.New(), Title: "theirs", CreatedBy: author.ID}
	require.NoError(t, store.DiscussionRepo().Create(ctx, d))

	err := svc.Delete(ctx, author.ID, admin.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, store.Users, author.ID)
}

func TestDeleteRemovesIdleUser(t *testing.T) {
	store := servicetest.NewStore()
	svc := newService(store)
	admin := store.AddUser("admin", true)
	idle := store.AddUser("idle", false)
	ctx := context.Background()

	err := svc.Delete(ctx, idle.ID, idle.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "self-delete still needs the admin flag")

	require.NoError(t, svc.Delete(ctx, idle.ID, admin.ID))
	assert.NotContains(t, store.Users, idle.ID)
	assert.Equal(t, domain.ActionUserDelete, store.Logs[len(store.Logs)-1].Action)
}
