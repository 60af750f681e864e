package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dooh/internal/models"
	"dooh/internal/session"
)

func newAuthService(t *testing.T, db *memDB, policy RoleSyncPolicy) *AuthService {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	profiles := memProfiles{db}
	return NewAuthService(
		memUsers{db},
		memAudit{db},
		profiles,
		NewProfileResolver(profiles, policy),
		session.NewRedisStore(client),
		"test-secret",
		time.Hour,
	)
}

func TestSignUpRequiresRole(t *testing.T) {
	svc := newAuthService(t, newMemDB(), RoleSyncAlways)

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SignUp(context.Background(), SignUpInput{Email: "a@example.com", Password: "secret1", Role: models.UserRoleAdmin})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignUpDoesNotCreateProfile(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(t, db, RoleSyncAlways)

	user, err := svc.SignUp(context.Background(), SignUpInput{Email: "A@Example.com ", Password: "secret1", Role: models.UserRoleScreenOwner, BusinessName: "Bright"})
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", user.Email)
	assert.Empty(t, db.profiles)
	assert.Equal(t, models.UserRoleScreenOwner, models.ParseSignupMetadata(user.Metadata).Role)

	_, err = svc.SignUp(context.Background(), SignUpInput{Email: "a@example.com", Password: "secret1", Role: models.UserRoleAdvertiser})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInCreatesProfileAndSession(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(t, db, RoleSyncAlways)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Email: "o@example.com", Password: "secret1", Role: models.UserRoleScreenOwner, BusinessName: "Bright"})
	require.NoError(t, err)

	res, err := svc.SignIn(ctx, "o@example.com", "secret1", ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	require.NotNil(t, res.Session.Profile)
	assert.Equal(t, models.UserRoleScreenOwner, res.Session.Role())
	assert.Equal(t, "Bright", res.Session.Profile.BusinessName)
	assert.NotEmpty(t, res.Token)
	require.Len(t, db.audit, 1)
	assert.Equal(t, "10.0.0.1", db.audit[0].IPAddress)

	sess, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, sess.ID)
}

func TestSignInWrongPassword(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(t, db, RoleSyncAlways)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, SignUpInput{Email: "a@example.com", Password: "secret1", Role: models.UserRoleAdvertiser})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "a@example.com", "nope", ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "ghost@example.com", "secret1", ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInSurvivesProfileFailure(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(t, db, RoleSyncAlways)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, SignUpInput{Email: "a@example.com", Password: "secret1", Role: models.UserRoleAdvertiser})
	require.NoError(t, err)

	db.failOn["profiles.get"] = errors.New("timeout")
	res, err := svc.SignIn(ctx, "a@example.com", "secret1", ClientInfo{})
	require.NoError(t, err)

	assert.Nil(t, res.Session.Profile)
	assert.NotEmpty(t, res.Session.Notice)
	assert.False(t, res.Session.HasRole(models.UserRoleAdvertiser))
}

func TestSignOutInvalidatesToken(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(t, db, RoleSyncAlways)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, SignUpInput{Email: "a@example.com", Password: "secret1", Role: models.UserRoleAdvertiser})
	require.NoError(t, err)
	res, err := svc.SignIn(ctx, "a@example.com", "secret1", ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, res.Session))

	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotNil(t, db.audit[0].RevokedAt)
}

func TestRoleSyncOnSignIn(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(t, db, RoleSyncAlways)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, SignUpInput{Email: "a@example.com", Password: "secret1", Role: models.UserRoleScreenOwner})
	require.NoError(t, err)
	db.addProfile(user.ID, models.UserRoleAdvertiser)

	res, err := svc.SignIn(ctx, "a@example.com", "secret1", ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleScreenOwner, res.Session.Role())
	assert.Equal(t, models.UserRoleScreenOwner, db.profiles[user.ID].Role)
}

func TestUpdateProfileRoleSwitch(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(t, db, RoleSyncFirstOnly)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Email: "a@example.com", Password: "secret1", Role: models.UserRoleAdvertiser})
	require.NoError(t, err)
	res, err := svc.SignIn(ctx, "a@example.com", "secret1", ClientInfo{})
	require.NoError(t, err)

	owner := models.UserRoleScreenOwner
	name := "Renamed"
	updated, err := svc.UpdateProfile(ctx, res.Session, ProfileUpdate{Role: &owner, BusinessName: &name})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleScreenOwner, updated.Role())
	assert.Equal(t, "Renamed", updated.Profile.BusinessName)

	// first_only: the next resolution pass keeps the switched role
	again, err := svc.ResolveSession(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleScreenOwner, again.Role())

	admin := models.UserRoleAdmin
	_, err = svc.UpdateProfile(ctx, again, ProfileUpdate{Role: &admin})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateProfileWithoutProfile(t *testing.T) {
	svc := newAuthService(t, newMemDB(), RoleSyncAlways)
	_, err := svc.UpdateProfile(context.Background(), &session.Session{ID: "s", UserID: "u"}, ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNoProfile)
}
