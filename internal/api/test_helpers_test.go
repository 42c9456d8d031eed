package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/audit"
	"github.com/nerrad567/gray-logic-authcore/internal/auth"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-authcore/internal/password"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
	_ "github.com/nerrad567/gray-logic-authcore/migrations" // registers embedded migrations
)

var testSigningKey = []byte("api-test-signing-key-0123456789abcdef")

// testEnv is a fully wired API over a migrated temp-file database.
type testEnv struct {
	srv     *Server
	handler http.Handler
	db      *database.DB
	users   *user.Service
	events  *audit.SQLiteRepository
	issuer  *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, config.APIConfig{Host: "127.0.0.1"})
}

func newTestEnvWithConfig(t *testing.T, apiCfg config.APIConfig) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "authcore.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	hasher, err := password.NewHasher(password.Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher() error = %v", err)
	}

	users := user.NewService(user.NewSQLiteRepository(db.DB), hasher)
	events := audit.NewSQLiteRepository(db.DB)

	issuer, err := auth.NewTokenIssuer(auth.IssuerConfig{SigningKey: testSigningKey})
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	validator, err := auth.NewCredentialValidator(ctx, users, hasher)
	if err != nil {
		t.Fatalf("NewCredentialValidator() error = %v", err)
	}

	log := logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", io.Discard)
	authSvc := auth.NewService(validator, issuer, users,
		auth.WithRecorder(audit.NewRecorder(log.Logger, events)),
		auth.WithLogger(log.Logger),
	)

	srv, err := New(Deps{
		Config:  apiCfg,
		Logger:  log,
		Auth:    authSvc,
		Users:   users,
		Audit:   events,
		Version: "test",
		Checks:  map[string]HealthChecker{"database": db},
		Stats:   db,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testEnv{
		srv:     srv,
		handler: srv.Handler(),
		db:      db,
		users:   users,
		events:  events,
		issuer:  issuer,
	}
}

// createUser stores an account directly through the user service.
func (e *testEnv) createUser(t *testing.T, username, pw string, roles ...acl.Role) user.Output {
	t.Helper()

	out, err := e.users.CreateUser(context.Background(), user.CreateInput{
		Name:     username,
		Username: username,
		Password: pw,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	return out
}

// login signs in over HTTP and returns the token response.
func (e *testEnv) login(t *testing.T, username, pw string) tokenResponse {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: username, Password: pw}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login(%s) status = %d, body = %s", username, w.Code, w.Body.String())
	}
	var resp tokenResponse
	decodeBody(t, w, &resp)
	return resp
}

// do sends a request through the router. body is JSON-encoded unless it is
// already a string.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
}

// expectError asserts the status and error code of a structured error response.
func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) Error {
	t.Helper()

	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	var e Error
	decodeBody(t, w, &e)
	if e.Code != code || e.Status != status {
		t.Errorf("error = %+v, want status %d code %q", e, status, code)
	}
	return e
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
