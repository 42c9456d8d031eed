package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/password"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

// UserStore is the account lookup and creation surface auth depends on.
// FindByUsername and GetByID return user.ErrNotFound for absent accounts.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*user.Record, error)
	GetByID(ctx context.Context, id string) (*user.Record, error)
	Create(ctx context.Context, in user.CreateInput) (*user.Record, error)
}

// CredentialValidator checks a username and password against the user store.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type CredentialValidator struct {
	store  UserStore
	hasher *password.Hasher

	// dummyHash is verified against when the username is unknown so that a
	// miss costs about as much as a wrong password.
	dummyHash string
}

// NewCredentialValidator creates a validator. It hashes a random value once
// with hasher to serve as the comparison target for unknown usernames.
func NewCredentialValidator(ctx context.Context, store UserStore, hasher *password.Hasher) (*CredentialValidator, error) {
	b := make([]byte, 16) //nolint:mnd // 128-bit throwaway secret
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating dummy password: %w", err)
	}

	dummy, err := hasher.Hash(ctx, hex.EncodeToString(b))
	if err != nil {
		return nil, fmt.Errorf("hashing dummy password: %w", err)
	}

	return &CredentialValidator{
		store:     store,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// Validate returns the actor for username if password matches its stored hash.
//
// An unknown username and a wrong password both return ErrInvalidCredentials.
// ErrAccountDisabled is only returned once the password has verified. Any
// other error is an internal failure (store or context) and does not wrap
// ErrUnauthorized.
func (v *CredentialValidator) Validate(ctx context.Context, username, plaintext string) (acl.Actor, error) {
	rec, err := v.store.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return acl.Actor{}, fmt.Errorf("looking up user: %w", err)
		}
		if _, err := v.hasher.Verify(ctx, plaintext, v.dummyHash); err != nil { //nolint:govet // shadow: result discarded
			return acl.Actor{}, fmt.Errorf("verifying password: %w", err)
		}
		return acl.Actor{}, ErrInvalidCredentials
	}

	ok, err := v.hasher.Verify(ctx, plaintext, rec.PasswordHash)
	if err != nil {
		return acl.Actor{}, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return acl.Actor{}, ErrInvalidCredentials
	}

	if rec.Disabled {
		return acl.Actor{}, ErrAccountDisabled
	}

	return rec.Actor(), nil
}
