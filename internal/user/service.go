package user

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/password"
)

// Service manages user accounts: input validation, password hashing and
// persistence. It is the user store consumed by the authentication layer.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Service struct {
	repo   Repository
	hasher *password.Hasher
}

// NewService creates a user service backed by repo.
func NewService(repo Repository, hasher *password.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Create validates in, hashes the password and stores a new account.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	rec := &Record{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        dedupRoles(in.Roles),
		Disabled:     in.Disabled,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateUser creates an account and returns its public projection.
func (s *Service) CreateUser(ctx context.Context, in CreateInput) (Output, error) {
	rec, err := s.Create(ctx, in)
	if err != nil {
		return Output{}, err
	}
	return ToOutput(rec), nil
}

// FindByUsername returns the stored record for username, or ErrNotFound.
func (s *Service) FindByUsername(ctx context.Context, username string) (*Record, error) {
	return s.repo.GetByUsername(ctx, username)
}

// GetByID returns the stored record for id, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// GetUser returns the public projection of the account with id.
func (s *Service) GetUser(ctx context.Context, id string) (Output, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Output{}, err
	}
	return ToOutput(rec), nil
}

// ListUsers returns every account's public projection.
func (s *Service) ListUsers(ctx context.Context) ([]Output, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return ToOutputs(records), nil
}

// UpdateUser applies the non-nil fields of in to the account with id.
// A new password is re-hashed with the configured algorithm.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateInput) (Output, error) {
	if err := ValidateUpdate(in); err != nil {
		return Output{}, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Output{}, err
	}

	if in.Name != nil {
		rec.Name = *in.Name
	}
	if in.Email != nil {
		rec.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(ctx, *in.Password) //nolint:govet // shadow: scoped to this branch
		if err != nil {
			return Output{}, fmt.Errorf("hashing password: %w", err)
		}
		rec.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return Output{}, err
	}
	return ToOutput(rec), nil
}

// SetDisabled enables or disables the account with id.
func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rec.Disabled = disabled
	return s.repo.Update(ctx, rec)
}

// DeleteUser removes the account with id.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// IsNotFound reports whether err means the account does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func dedupRoles(roles []acl.Role) []acl.Role {
	out := make([]acl.Role, 0, len(roles))
	for _, r := range roles {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
