package api

import (
	"net/http"

	"github.com/nerrad567/gray-logic-authcore/internal/auth"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

// tokenTypeBearer is the OAuth-style token_type returned with every pair.
const tokenTypeBearer = "Bearer"

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// refreshRequest is the request body for POST /auth/refresh-token.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// registerRequest is the request body for POST /auth/register.
// Roles and disabled flags are not accepted here.
type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// tokenResponse is returned by login and refresh.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (s *Server) newTokenResponse(pair auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(s.auth.Issuer().AccessTTL().Seconds()),
	}
}

// handleLogin authenticates a username/password pair and returns tokens.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	actor, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	pair, err := s.auth.Login(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.newTokenResponse(pair))
}

// handleRegister creates a self-service USER account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := s.auth.Register(r.Context(), user.CreateInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// handleRefresh exchanges a refresh token for a new pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.newTokenResponse(pair))
}

// handleMe returns the caller's own account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "not authenticated")
		return
	}

	out, err := s.users.GetUser(r.Context(), actor.ID)
	if err != nil {
		if user.IsNotFound(err) {
			// The token outlived its account.
			writeUnauthorized(w, auth.ErrTokenInvalid.Error())
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
