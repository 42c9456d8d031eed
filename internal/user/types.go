package user

import (
	"errors"
	"time"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

// Record is a stored user account, including its credential hash.
// It never leaves the process: use ToOutput for anything serialised.
type Record struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"` // never serialised
	Roles        []acl.Role `json:"roles"`
	Disabled     bool       `json:"disabled"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Actor projects the record onto the identity used by the policy engine.
func (r *Record) Actor() acl.Actor {
	roles := make([]acl.Role, len(r.Roles))
	copy(roles, r.Roles)
	return acl.Actor{
		ID:       r.ID,
		Username: r.Username,
		Roles:    roles,
	}
}

// CreateInput is the data needed to create an account.
type CreateInput struct {
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Email    string     `json:"email,omitempty"`
	Password string     `json:"password"`
	Roles    []acl.Role `json:"roles,omitempty"`
	Disabled bool       `json:"disabled,omitempty"`
}

// UpdateInput carries the mutable fields of an account. Nil means unchanged.
type UpdateInput struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Output is the sanitised projection of a Record returned to callers.
type Output struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	Roles     []acl.Role `json:"roles"`
	Disabled  bool       `json:"disabled"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToOutput builds the public projection of r. The password hash is not copied.
func ToOutput(r *Record) Output {
	roles := make([]acl.Role, len(r.Roles))
	copy(roles, r.Roles)
	return Output{
		ID:        r.ID,
		Name:      r.Name,
		Username:  r.Username,
		Email:     r.Email,
		Roles:     roles,
		Disabled:  r.Disabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToOutputs projects a slice of records.
func ToOutputs(records []Record) []Output {
	out := make([]Output, len(records))
	for i := range records {
		out[i] = ToOutput(&records[i])
	}
	return out
}

// Sentinel errors for user operations.
var (
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)
