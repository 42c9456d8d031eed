package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

// JOSE "typ" header values distinguishing the two token kinds.
const (
	TypeAccessToken  = "at+jwt"
	TypeRefreshToken = "rt+jwt"
)

// MinSigningKeyLength is the shortest accepted HMAC signing key, in bytes.
const MinSigningKeyLength = 32

// Default token lifetimes.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessClaims is the access-token claim set: sub, username, roles, iat, exp.
type AccessClaims struct {
	Username string     `json:"username"`
	Roles    []acl.Role `json:"roles"`
	jwt.RegisteredClaims
}

// Actor rebuilds the authenticated identity carried by the token.
func (c *AccessClaims) Actor() acl.Actor {
	roles := make([]acl.Role, len(c.Roles))
	copy(roles, c.Roles)
	return acl.Actor{ID: c.Subject, Username: c.Username, Roles: roles}
}

// RefreshClaims is the refresh-token claim set: sub, iat, exp only.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// IssuerConfig configures a TokenIssuer.
type IssuerConfig struct {
	// SigningKey is the process-wide HMAC key. Must be at least MinSigningKeyLength bytes.
	SigningKey []byte

	// Algorithm is HS256 (default), HS384 or HS512.
	Algorithm string

	// AccessTTL and RefreshTTL default to DefaultAccessTTL and DefaultRefreshTTL.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// TokenIssuer signs and parses access and refresh tokens.
//
// Thread Safety:
//   - All methods are safe for concurrent use; the issuer holds no mutable state.
type TokenIssuer struct {
	key        []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer validates cfg and creates an issuer.
func NewTokenIssuer(cfg IssuerConfig) (*TokenIssuer, error) {
	if len(cfg.SigningKey) < MinSigningKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", MinSigningKeyLength, len(cfg.SigningKey))
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "", jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	accessTTL := cfg.AccessTTL
	if accessTTL == 0 {
		accessTTL = DefaultAccessTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if accessTTL < 0 || refreshTTL < 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh token lifetime (%s) must exceed access token lifetime (%s)", refreshTTL, accessTTL)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)

	return &TokenIssuer{
		key:        key,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
	}, nil
}

// AccessTTL returns the lifetime of issued access tokens.
func (ti *TokenIssuer) AccessTTL() time.Duration {
	return ti.accessTTL
}

// Issue signs a new access/refresh token pair for actor.
func (ti *TokenIssuer) Issue(actor acl.Actor) (TokenPair, error) {
	if actor.ID == "" {
		return TokenPair{}, errors.New("issuing tokens: actor has no ID")
	}

	now := ti.now()

	refresh := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.refreshTTL)),
		},
	}
	refreshToken, err := ti.sign(refresh, TypeRefreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("signing refresh token: %w", err)
	}

	roles := actor.Roles
	if roles == nil {
		roles = []acl.Role{}
	}
	access := AccessClaims{
		Username: actor.Username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.accessTTL)),
		},
	}
	accessToken, err := ti.sign(access, TypeAccessToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("signing access token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (ti *TokenIssuer) sign(claims jwt.Claims, typ string) (string, error) {
	token := jwt.NewWithClaims(ti.method, claims)
	token.Header["typ"] = typ
	return token.SignedString(ti.key)
}

// ParseAccessToken validates an access token and returns its claims.
// It checks the signature, algorithm, expiry, typ header and subject.
func (ti *TokenIssuer) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ti.parse(tokenString, claims, TypeAccessToken); err != nil {
		return nil, err
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username", ErrTokenInvalid)
	}
	return claims, nil
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (ti *TokenIssuer) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ti.parse(tokenString, claims, TypeRefreshToken); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ti *TokenIssuer) parse(tokenString string, claims jwt.Claims, typ string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return ti.key, nil
	},
		jwt.WithValidMethods([]string{ti.method.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}

	if got, _ := token.Header["typ"].(string); got != typ {
		return fmt.Errorf("%w: unexpected token type %q", ErrTokenInvalid, got)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return nil
}
