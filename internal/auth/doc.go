// Package auth decides who a caller is.
//
// It provides:
//   - CredentialValidator: username/password checks against the user store,
//     including disabled-account enforcement
//   - TokenIssuer: signed JWT access and refresh tokens
//   - Service: login, register and refresh flows built on the two above
//
// Authorisation decisions are made by the acl package; Authorize adapts an
// engine decision to ErrForbidden for callers that work with errors.
//
// Every credential failure wraps ErrUnauthorized. An unknown username and a
// wrong password produce the same error value, so callers cannot tell which
// accounts exist.
package auth
