// Package password hashes and verifies account passwords.
//
// Two adaptive algorithms are supported:
//   - bcrypt (default, "$2a$"/"$2b$" prefixed hashes)
//   - Argon2id in PHC string format ("$argon2id$v=19$m=...,t=...,p=...$salt$hash")
//
// Verify detects the algorithm from the stored hash, so records hashed with
// either algorithm keep working when the configured algorithm changes.
//
// Hashing is CPU-bound and deliberately slow. A Hasher bounds how many hash
// operations run at once so a burst of logins cannot starve other request
// processing.
package password

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Algorithm names accepted in configuration.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// DefaultBcryptCost matches the cost used for existing account records.
const DefaultBcryptCost = 10

// Sentinel errors for password operations.
var (
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")
	ErrMalformedHash    = errors.New("malformed password hash")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
)

// bcryptMaxPasswordBytes is the input limit of bcrypt.
const bcryptMaxPasswordBytes = 72

// Config controls hashing behaviour.
type Config struct {
	// Algorithm is used for new hashes: "bcrypt" (default) or "argon2id".
	Algorithm string

	// BcryptCost is the bcrypt work factor. Zero means DefaultBcryptCost.
	BcryptCost int

	// MaxConcurrent bounds simultaneous hash operations.
	// Zero means runtime.GOMAXPROCS(0).
	MaxConcurrent int
}

// Hasher hashes and verifies passwords with bounded concurrency.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Hasher struct {
	algorithm  string
	bcryptCost int
	sem        *semaphore.Weighted
}

// NewHasher creates a Hasher from cfg.
func NewHasher(cfg Config) (*Hasher, error) {
	algorithm := strings.ToLower(cfg.Algorithm)
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}
	if algorithm != AlgorithmBcrypt && algorithm != AlgorithmArgon2id {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, cfg.Algorithm)
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	return &Hasher{
		algorithm:  algorithm,
		bcryptCost: cost,
		sem:        semaphore.NewWeighted(int64(limit)),
	}, nil
}

// Algorithm returns the algorithm used for new hashes.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// Hash returns an encoded hash of plaintext using the configured algorithm.
// It blocks until a hashing slot is free or ctx is done.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	switch h.algorithm {
	case AlgorithmArgon2id:
		return hashArgon2id(plaintext)
	default:
		if len(plaintext) > bcryptMaxPasswordBytes {
			return "", ErrPasswordTooLong
		}
		b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("hashing password: %w", err)
		}
		return string(b), nil
	}
}

// Verify reports whether plaintext matches encoded. A mismatch is (false, nil);
// an error means the hash could not be checked at all.
func (h *Hasher) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2id(plaintext, encoded)
	case strings.HasPrefix(encoded, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	default:
		return false, ErrMalformedHash
	}
}

// NeedsRehash reports whether encoded was produced with a different
// algorithm or a lower bcrypt cost than currently configured.
func (h *Hasher) NeedsRehash(encoded string) bool {
	if h.algorithm == AlgorithmArgon2id {
		return !strings.HasPrefix(encoded, "$argon2id$")
	}
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return true
	}
	return cost < h.bcryptCost
}
