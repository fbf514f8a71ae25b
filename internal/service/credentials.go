package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/blogapi/internal/apperr"
	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/geocoder89/blogapi/internal/security"
)

// same message for unknown email and wrong password
const badCredentialsMessage = "incorrect email or password"

type CredentialService struct {
	users  UserStore
	hasher PasswordHasher
	log    *slog.Logger

	// compared against on unknown emails so both login failures cost one bcrypt check
	dummyHash string
}

func NewCredentialService(users UserStore, hasher PasswordHasher, log *slog.Logger) (*CredentialService, error) {
	dummy, err := hasher.Hash("blogapi-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy password hash: %w", err)
	}

	return &CredentialService{
		users:     users,
		hasher:    hasher,
		log:       log,
		dummyHash: dummy,
	}, nil
}

func (s *CredentialService) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, apperr.Validation("name, email and password are required", err)
	}

	// best effort only, the unique constraint below has the final say
	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return user.User{}, apperr.Conflict("email is already in use", user.ErrEmailTaken)
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, apperr.Storage("could not create user", err)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.users.Create(ctx, user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, apperr.Conflict("email is already in use", err)
		}
		return user.User{}, apperr.Storage("could not create user", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", created.ID)

	return created, nil
}

func (s *CredentialService) Login(ctx context.Context, req user.LoginRequest) (user.Profile, error) {
	if err := req.Validate(); err != nil {
		return user.Profile{}, apperr.Validation("email and password are required", err)
	}

	found, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return user.Profile{}, apperr.Storage("could not log in", err)
		}

		_ = s.hasher.Check(s.dummyHash, req.Password)
		return user.Profile{}, apperr.Auth(badCredentialsMessage)
	}

	if err := s.hasher.Check(found.PasswordHash, req.Password); err != nil {
		return user.Profile{}, apperr.Auth(badCredentialsMessage)
	}

	return found.Profile(), nil
}

func (s *CredentialService) UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.Profile, error) {
	if req.Email != nil && *req.Email == "" {
		return user.Profile{}, apperr.Validation("email must not be empty", nil)
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Profile{}, apperr.NotFound("user not found", err)
		}
		return user.Profile{}, apperr.Storage("could not update profile", err)
	}

	if req.Email != nil && *req.Email != current.Email {
		owner, err := s.users.GetByEmail(ctx, *req.Email)
		switch {
		case err == nil && owner.ID != id:
			return user.Profile{}, apperr.Conflict("email is already used by another account", user.ErrEmailTaken)
		case err != nil && !errors.Is(err, user.ErrNotFound):
			return user.Profile{}, apperr.Storage("could not update profile", err)
		}
	}

	updated, err := s.users.Update(ctx, id, func(u *user.User) error {
		if req.Name != nil {
			u.Name = *req.Name
		}

		if req.Email != nil {
			u.Email = *req.Email
		}

		if req.ChangesPassword() {
			if err := s.hasher.Check(u.PasswordHash, *req.CurrentPassword); err != nil {
				return apperr.Auth("current password is incorrect")
			}

			hash, err := s.hashPassword(*req.NewPassword)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}

		return nil
	})

	if err != nil {
		var appErr *apperr.Error
		switch {
		case errors.As(err, &appErr):
			return user.Profile{}, appErr
		case errors.Is(err, user.ErrNotFound):
			return user.Profile{}, apperr.NotFound("user not found", err)
		case errors.Is(err, user.ErrEmailTaken):
			return user.Profile{}, apperr.Conflict("email is already used by another account", err)
		default:
			return user.Profile{}, apperr.Storage("could not update profile", err)
		}
	}

	s.log.InfoContext(ctx, "profile updated", "user_id", id, "password_changed", req.ChangesPassword())

	return updated.Profile(), nil
}

func (s *CredentialService) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return "", apperr.Validation("password must be at most 72 bytes", err)
		}
		return "", err
	}
	return hash, nil
}
