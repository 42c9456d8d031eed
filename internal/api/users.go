package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/auth"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

// createUserRequest is the admin-only account creation body. Unlike
// registration it may assign roles and create disabled accounts.
// Roles default to USER.
type createUserRequest struct {
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Email    string     `json:"email,omitempty"`
	Password string     `json:"password"`
	Roles    []acl.Role `json:"roles,omitempty"`
	Disabled bool       `json:"disabled,omitempty"`
}

// updateUserRequest carries a partial update. Disabled needs manage rights.
type updateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Disabled *bool   `json:"disabled,omitempty"`
}

// handleListUsers returns every account the caller may read.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	can := s.userACL.ForActor(actor)
	visible := make([]user.Output, 0, len(users))
	for _, u := range users {
		if can.Can(acl.ActionRead, &user.Record{ID: u.ID}) {
			visible = append(visible, u)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": visible,
		"count": len(visible),
	})
}

// handleCreateUser creates an account with explicit roles.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	if err := auth.Authorize(s.userACL, actor, acl.ActionCreate, nil); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Roles) == 0 {
		req.Roles = []acl.Role{acl.RoleUser}
	}

	out, err := s.users.CreateUser(r.Context(), user.CreateInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
		Disabled: req.Disabled,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info("user created", "user_id", out.ID, "username", out.Username, "roles", out.Roles, "created_by", actor.ID)
	writeJSON(w, http.StatusCreated, out)
}

// handleGetUser returns a single account.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadUser(w, r, acl.ActionRead)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user.ToOutput(rec))
}

// handleUpdateUser applies a partial update to an account.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadUser(w, r, acl.ActionUpdate)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor, _ := auth.ActorFromContext(r.Context())
	if req.Disabled != nil {
		if err := auth.Authorize(s.userACL, actor, acl.ActionManage, rec); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if *req.Disabled && rec.ID == actor.ID {
			writeBadRequest(w, "cannot disable your own account")
			return
		}
	}

	out, err := s.users.UpdateUser(r.Context(), rec.ID, user.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if req.Disabled != nil && *req.Disabled != rec.Disabled {
		if err := s.users.SetDisabled(r.Context(), rec.ID, *req.Disabled); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		out.Disabled = *req.Disabled
		s.logger.Info("user disabled flag changed", "user_id", rec.ID, "disabled", *req.Disabled, "changed_by", actor.ID)
	}

	writeJSON(w, http.StatusOK, out)
}

// handleDeleteUser removes an account.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadUser(w, r, acl.ActionDelete)
	if !ok {
		return
	}

	actor, _ := auth.ActorFromContext(r.Context())
	if rec.ID == actor.ID {
		writeBadRequest(w, "cannot delete your own account")
		return
	}

	if err := s.users.DeleteUser(r.Context(), rec.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info("user deleted", "user_id", rec.ID, "username", rec.Username, "deleted_by", actor.ID)
	w.WriteHeader(http.StatusNoContent)
}

// loadUser fetches the {id} account and authorises action on it.
// Writes the error response and returns false on failure.
func (s *Server) loadUser(w http.ResponseWriter, r *http.Request, action acl.Action) (*user.Record, bool) {
	rec, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}

	actor, _ := auth.ActorFromContext(r.Context())
	if err := auth.Authorize(s.userACL, actor, action, rec); err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	return rec, true
}
