package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/geocoder89/blogapi/internal/apperr"
	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/geocoder89/blogapi/internal/repo/memory"
	"github.com/geocoder89/blogapi/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredentials(t *testing.T) (*service.CredentialService, *memory.UsersRepo) {
	t.Helper()

	users := memory.NewUsersRepo()

	s, err := service.NewCredentialService(users, fastHasher(), discardLogger())
	require.NoError(t, err)

	return s, users
}

func register(t *testing.T, s *service.CredentialService, name, email, password string) user.User {
	t.Helper()

	u, err := s.Register(context.Background(), user.RegisterRequest{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return u
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	s, users := newCredentials(t)

	u := register(t, s, "Ada", "ada@example.com", "s3cret")
	assert.Equal(t, "Ada", u.Name)

	stored, err := users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s, _ := newCredentials(t)
	register(t, s, "Ada", "ada@example.com", "s3cret")

	_, err := s.Register(context.Background(), user.RegisterRequest{Name: "Other", Email: "ada@example.com", Password: "x"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newCredentials(t)

	tests := []struct {
		name string
		req  user.RegisterRequest
	}{
		{"missing name", user.RegisterRequest{Email: "a@b.c", Password: "x"}},
		{"missing email", user.RegisterRequest{Name: "A", Password: "x"}},
		{"missing password", user.RegisterRequest{Name: "A", Email: "a@b.c"}},
		{"password too long", user.RegisterRequest{Name: "A", Email: "a@b.c", Password: strings.Repeat("p", 80)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.req)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestLogin(t *testing.T) {
	s, _ := newCredentials(t)
	u := register(t, s, "Ada", "ada@example.com", "s3cret")

	profile, err := s.Login(context.Background(), user.LoginRequest{Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, user.Profile{ID: u.ID, Name: "Ada", Email: "ada@example.com"}, profile)

	_, wrongPassword := s.Login(context.Background(), user.LoginRequest{Email: "ada@example.com", Password: "nope"})
	_, unknownEmail := s.Login(context.Background(), user.LoginRequest{Email: "who@example.com", Password: "s3cret"})

	assert.Equal(t, apperr.KindAuth, apperr.KindOf(wrongPassword))
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(unknownEmail))
	assert.Equal(t, apperr.MessageOf(wrongPassword), apperr.MessageOf(unknownEmail))

	_, err = s.Login(context.Background(), user.LoginRequest{Email: "ada@example.com"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateProfileNameAndEmail(t *testing.T) {
	ctx := context.Background()
	s, _ := newCredentials(t)
	u := register(t, s, "Ada", "ada@example.com", "s3cret")

	profile, err := s.UpdateProfile(ctx, u.ID, user.UpdateProfileRequest{
		Name:  ptr("Ada Lovelace"),
		Email: ptr("lovelace@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, user.Profile{ID: u.ID, Name: "Ada Lovelace", Email: "lovelace@example.com"}, profile)

	_, err = s.Login(ctx, user.LoginRequest{Email: "lovelace@example.com", Password: "s3cret"})
	assert.NoError(t, err)
}

func TestUpdateProfileSameEmailIsNotAConflict(t *testing.T) {
	s, _ := newCredentials(t)
	u := register(t, s, "Ada", "ada@example.com", "s3cret")

	_, err := s.UpdateProfile(context.Background(), u.ID, user.UpdateProfileRequest{Email: ptr("ada@example.com")})
	assert.NoError(t, err)
}

func TestUpdateProfileEmailConflictChangesNothing(t *testing.T) {
	ctx := context.Background()
	s, users := newCredentials(t)
	ada := register(t, s, "Ada", "ada@example.com", "s3cret")
	register(t, s, "Grace", "grace@example.com", "s3cret")

	_, err := s.UpdateProfile(ctx, ada.ID, user.UpdateProfileRequest{
		Name:  ptr("Changed"),
		Email: ptr("grace@example.com"),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	stored, err := users.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "ada@example.com", stored.Email)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	ctx := context.Background()
	s, _ := newCredentials(t)
	u := register(t, s, "Ada", "ada@example.com", "old-pass")

	_, err := s.UpdateProfile(ctx, u.ID, user.UpdateProfileRequest{
		CurrentPassword: ptr("old-pass"),
		NewPassword:     ptr("new-pass"),
	})
	require.NoError(t, err)

	_, err = s.Login(ctx, user.LoginRequest{Email: "ada@example.com", Password: "new-pass"})
	assert.NoError(t, err)

	_, err = s.Login(ctx, user.LoginRequest{Email: "ada@example.com", Password: "old-pass"})
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestUpdateProfileWrongCurrentPasswordRollsBack(t *testing.T) {
	ctx := context.Background()
	s, users := newCredentials(t)
	u := register(t, s, "Ada", "ada@example.com", "old-pass")

	_, err := s.UpdateProfile(ctx, u.ID, user.UpdateProfileRequest{
		Name:            ptr("Changed"),
		CurrentPassword: ptr("wrong"),
		NewPassword:     ptr("new-pass"),
	})
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)

	_, err = s.Login(ctx, user.LoginRequest{Email: "ada@example.com", Password: "old-pass"})
	assert.NoError(t, err)
}

func TestUpdateProfileNewPasswordAloneIsIgnored(t *testing.T) {
	ctx := context.Background()
	s, _ := newCredentials(t)
	u := register(t, s, "Ada", "ada@example.com", "old-pass")

	_, err := s.UpdateProfile(ctx, u.ID, user.UpdateProfileRequest{NewPassword: ptr("new-pass")})
	require.NoError(t, err)

	_, err = s.Login(ctx, user.LoginRequest{Email: "ada@example.com", Password: "old-pass"})
	assert.NoError(t, err)
}

func TestUpdateProfileErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := newCredentials(t)
	u := register(t, s, "Ada", "ada@example.com", "s3cret")

	_, err := s.UpdateProfile(ctx, 9999, user.UpdateProfileRequest{Name: ptr("x")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = s.UpdateProfile(ctx, u.ID, user.UpdateProfileRequest{Email: ptr("")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCredentialStorageFailures(t *testing.T) {
	ctx := context.Background()
	s, err := service.NewCredentialService(brokenUsers{}, fastHasher(), discardLogger())
	require.NoError(t, err)

	_, err = s.Register(ctx, user.RegisterRequest{Name: "A", Email: "a@b.c", Password: "x"})
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))

	_, err = s.Login(ctx, user.LoginRequest{Email: "a@b.c", Password: "x"})
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))

	_, err = s.UpdateProfile(ctx, 1, user.UpdateProfileRequest{Name: ptr("x")})
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	assert.ErrorIs(t, err, errDown)
}

func TestNewCredentialServiceFailsWhenHasherFails(t *testing.T) {
	_, err := service.NewCredentialService(memory.NewUsersRepo(), brokenHasher{}, discardLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, errHashUnavailable)
}
