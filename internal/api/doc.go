// Package api implements the authcore HTTP REST API.
//
// This package provides:
//   - Login, registration and token refresh endpoints
//   - Account management guarded by the user access policy
//   - Read access to the authentication audit trail
//   - Middleware stack (request ID, logging, recovery, CORS, body limit, bearer auth)
//
// # Security
//
// Protected routes require "Authorization: Bearer <access token>". The
// middleware verifies the token and places the caller's acl.Actor in the
// request context; handlers authorise every resource access through the
// policy engines built by user.NewACL and audit.NewACL.
//
// Error responses share one shape: {status, code, message, fields?}.
package api
