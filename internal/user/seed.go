package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

// seedPasswordBytes is the number of random bytes for a generated admin password.
const seedPasswordBytes = 16

// SeedConfig describes the first-boot administrator.
type SeedConfig struct {
	Username string
	Name     string
	// Password is generated when empty.
	Password string
}

// SeedAdmin creates the initial ADMIN account on first boot if no users exist.
// A generated password is logged once at WARN and must be changed immediately.
// Returns the password used (empty string if seeding was skipped).
func SeedAdmin(ctx context.Context, svc *Service, cfg SeedConfig, logger *slog.Logger) (string, error) {
	count, err := svc.repo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}

	if count > 0 {
		logger.Info("users exist, skipping admin seed")
		return "", nil
	}

	if cfg.Username == "" {
		cfg.Username = "admin"
	}
	if cfg.Name == "" {
		cfg.Name = "Administrator"
	}

	pw := cfg.Password
	generated := pw == ""
	if generated {
		b := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(b); err != nil { //nolint:govet // shadow: err re-declared in nested scope
			return "", fmt.Errorf("generating seed password: %w", err)
		}
		pw = hex.EncodeToString(b)
	}

	_, err = svc.Create(ctx, CreateInput{
		Name:     cfg.Name,
		Username: cfg.Username,
		Password: pw,
		Roles:    []acl.Role{acl.RoleAdmin},
	})
	if err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	if generated {
		logger.Warn("seed admin account created",
			"username", cfg.Username,
			"password", pw,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed admin account created", "username", cfg.Username)
	}

	return pw, nil
}
