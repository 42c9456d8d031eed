package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/audit"
	"github.com/nerrad567/gray-logic-authcore/internal/password"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

var testSigningKey = []byte("test-signing-key-0123456789abcdef")

// memRepo is an in-memory user.Repository.
type memRepo struct {
	mu      sync.Mutex
	records map[string]user.Record
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]user.Record)}
}

func (m *memRepo) Create(_ context.Context, r *user.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.Username == r.Username {
			return user.ErrUsernameExists
		}
	}
	if r.ID == "" {
		r.ID = "usr-" + uuid.NewString()[:8]
	}
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	m.records[r.ID] = *r
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*user.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &r, nil
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (*user.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.Username == username {
			return &r, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memRepo) List(_ context.Context) ([]user.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]user.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, r *user.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; !ok {
		return user.ErrNotFound
	}
	m.records[r.ID] = *r
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return user.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

// memRecorder captures audit events.
type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *memRecorder) Record(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *memRecorder) last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return audit.Event{}
	}
	return r.events[len(r.events)-1]
}

// fixture bundles a fully wired auth stack over an in-memory store.
type fixture struct {
	repo      *memRepo
	users     *user.Service
	hasher    *password.Hasher
	issuer    *TokenIssuer
	validator *CredentialValidator
	recorder  *memRecorder
	svc       *Service
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := password.NewHasher(password.Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher() error = %v", err)
	}

	f := &fixture{
		repo:     newMemRepo(),
		hasher:   hasher,
		recorder: &memRecorder{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.users = user.NewService(f.repo, hasher)

	f.issuer, err = NewTokenIssuer(IssuerConfig{
		SigningKey: testSigningKey,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	f.validator, err = NewCredentialValidator(context.Background(), f.users, hasher)
	if err != nil {
		t.Fatalf("NewCredentialValidator() error = %v", err)
	}

	f.svc = NewService(f.validator, f.issuer, f.users, WithRecorder(f.recorder))
	return f
}

// addUser stores an account with the given roles and password.
func (f *fixture) addUser(t *testing.T, username, pw string, disabled bool, roles ...acl.Role) *user.Record {
	t.Helper()

	rec, err := f.users.Create(context.Background(), user.CreateInput{
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Username: username,
		Password: pw,
		Roles:    roles,
		Disabled: disabled,
	})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", username, err)
	}
	return rec
}
