package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/audit"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

// EventRecorder receives one audit event per authentication attempt.
type EventRecorder interface {
	Record(ctx context.Context, e audit.Event)
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the audit event recorder.
func WithRecorder(r EventRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service orchestrates login, registration and token refresh.
//
// It holds no per-attempt state: each call validates, issues and returns.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Service struct {
	validator *CredentialValidator
	issuer    *TokenIssuer
	store     UserStore
	recorder  EventRecorder
	logger    *slog.Logger
}

// NewService creates the authentication service.
func NewService(validator *CredentialValidator, issuer *TokenIssuer, store UserStore, opts ...Option) *Service {
	s := &Service{
		validator: validator,
		issuer:    issuer,
		store:     store,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issuer returns the token issuer, for transports that verify access tokens.
func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

// Authenticate checks username and password. It is the only credential-check
// path, so the disabled-account rule applies to every caller.
func (s *Service) Authenticate(ctx context.Context, username, plaintext string) (acl.Actor, error) {
	actor, err := s.validator.Validate(ctx, username, plaintext)
	if err != nil {
		s.record(ctx, audit.Event{
			Action:   audit.ActionLogin,
			Outcome:  audit.OutcomeFailure,
			Username: username,
			Reason:   failureReason(err),
		})
		if errors.Is(err, ErrUnauthorized) {
			s.logger.Info("login rejected", "username", username, "reason", failureReason(err))
		} else {
			s.logger.Error("credential check failed", "username", username, "error", err)
		}
		return acl.Actor{}, err
	}
	return actor, nil
}

// Login issues a token pair for an actor that has already been authenticated.
func (s *Service) Login(ctx context.Context, actor acl.Actor) (TokenPair, error) {
	pair, err := s.issuer.Issue(actor)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issuing tokens: %w", err)
	}

	s.record(ctx, audit.Event{
		Action:   audit.ActionLogin,
		Outcome:  audit.OutcomeSuccess,
		ActorID:  actor.ID,
		Username: actor.Username,
	})
	s.logger.Info("login succeeded", "user_id", actor.ID, "username", actor.Username)

	return pair, nil
}

// Register creates a self-service account. Whatever the input says, the new
// account holds exactly the USER role and is enabled.
func (s *Service) Register(ctx context.Context, in user.CreateInput) (user.Output, error) {
	in.Roles = []acl.Role{acl.RoleUser}
	in.Disabled = false

	rec, err := s.store.Create(ctx, in)
	if err != nil {
		s.record(ctx, audit.Event{
			Action:   audit.ActionRegister,
			Outcome:  audit.OutcomeFailure,
			Username: in.Username,
			Reason:   failureReason(err),
		})
		return user.Output{}, err
	}

	s.record(ctx, audit.Event{
		Action:   audit.ActionRegister,
		Outcome:  audit.OutcomeSuccess,
		ActorID:  rec.ID,
		Username: rec.Username,
	})
	s.logger.Info("user registered", "user_id", rec.ID, "username", rec.Username)

	return user.ToOutput(rec), nil
}

// Refresh exchanges a valid refresh token for a new pair. The account is
// reloaded so role changes apply and disabled or deleted accounts are refused.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		s.record(ctx, audit.Event{
			Action:  audit.ActionRefresh,
			Outcome: audit.OutcomeFailure,
			Reason:  failureReason(err),
		})
		return TokenPair{}, err
	}

	rec, err := s.store.GetByID(ctx, claims.Subject)
	switch {
	case errors.Is(err, user.ErrNotFound):
		err = ErrTokenInvalid
	case err != nil:
		return TokenPair{}, fmt.Errorf("loading user: %w", err)
	case rec.Disabled:
		err = ErrAccountDisabled
	}
	if err != nil {
		s.record(ctx, audit.Event{
			Action:  audit.ActionRefresh,
			Outcome: audit.OutcomeFailure,
			ActorID: claims.Subject,
			Reason:  failureReason(err),
		})
		return TokenPair{}, err
	}

	actor := rec.Actor()
	pair, err := s.issuer.Issue(actor)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issuing tokens: %w", err)
	}

	s.record(ctx, audit.Event{
		Action:   audit.ActionRefresh,
		Outcome:  audit.OutcomeSuccess,
		ActorID:  actor.ID,
		Username: actor.Username,
	})
	return pair, nil
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, e)
}

// failureReason maps an error to a short audit reason code.
func failureReason(err error) string {
	var verr *user.ValidationError
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountDisabled):
		return "account_disabled"
	case errors.Is(err, ErrTokenInvalid):
		return "invalid_token"
	case errors.Is(err, user.ErrUsernameExists):
		return "username_exists"
	case errors.As(err, &verr):
		return "validation_failed"
	default:
		return "internal_error"
	}
}
