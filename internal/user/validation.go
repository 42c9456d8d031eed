package user

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 3-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)

// emailPattern is a shape check only; deliverability is not verified.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Field limits.
const (
	maxNameLength     = 100
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
	maxEmailLength    = 254
)

// ValidationError reports invalid input per field.
type ValidationError struct {
	Fields map[string]string
}

// Error implements error with a stable, sorted field listing.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add records a problem for field, keeping the first message.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// errOrNil returns e as an error only if it holds problems.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// ValidateCreate checks a CreateInput.
func ValidateCreate(in CreateInput) error {
	var verr ValidationError

	validateName(&verr, in.Name)

	if !IsValidUsername(in.Username) {
		verr.add("username", "must be 3-64 characters: letters, digits, '.', '-' or '_'")
	}

	validatePassword(&verr, in.Password)
	validateEmail(&verr, in.Email)

	if len(in.Roles) == 0 {
		verr.add("roles", "at least one role is required")
	}
	for _, r := range in.Roles {
		if !acl.IsValidRole(r) {
			verr.add("roles", fmt.Sprintf("unknown role %q", r))
		}
	}

	return verr.errOrNil()
}

// ValidateUpdate checks the fields present in an UpdateInput.
func ValidateUpdate(in UpdateInput) error {
	var verr ValidationError

	if in.Name != nil {
		validateName(&verr, *in.Name)
	}
	if in.Email != nil {
		validateEmail(&verr, *in.Email)
	}
	if in.Password != nil {
		validatePassword(&verr, *in.Password)
	}

	return verr.errOrNil()
}

func validateName(verr *ValidationError, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		verr.add("name", "is required")
	case len(name) > maxNameLength:
		verr.add("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
}

func validatePassword(verr *ValidationError, pw string) {
	if len(pw) < minPasswordLength || len(pw) > maxPasswordLength {
		verr.add("password", fmt.Sprintf("must be %d-%d characters", minPasswordLength, maxPasswordLength))
	}
}

func validateEmail(verr *ValidationError, email string) {
	if email == "" {
		return
	}
	if len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		verr.add("email", "must be a valid email address")
	}
}
