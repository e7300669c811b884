package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"task-service/auth"
	"task-service/models"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *TestEnv) {
	t.Helper()
	env := newTestEnv(t)
	issuer := auth.NewIssuer([]byte("test-secret"), 24*time.Hour)
	return NewAuthHandler(env.DB, env.Cache, issuer), env
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"email":"a@x.com","password":"pw123"}`, http.StatusCreated},
		{"missing email", `{"password":"pw123"}`, http.StatusBadRequest},
		{"malformed email", `{"email":"not-an-email","password":"pw123"}`, http.StatusBadRequest},
		{"missing password", `{"email":"a@x.com"}`, http.StatusBadRequest},
		{"empty password", `{"email":"a@x.com","password":""}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, env := newAuthHandler(t)
			rr := postJSON(t, h.Register, "/auth/register", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			wantRows := 0
			if tt.wantStatus == http.StatusCreated {
				wantRows = 1
			}
			if n := countRows(t, env.DB, "SELECT COUNT(*) FROM users"); n != wantRows {
				t.Errorf("user rows = %d, want %d", n, wantRows)
			}
		})
	}
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	h, env := newAuthHandler(t)
	rr := postJSON(t, h.Register, "/auth/register", `{"email":"a@x.com","password":"pw123"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rr.Code)
	}

	var user models.User
	if err := env.DB.Get(&user, "SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?", "a@x.com"); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == "pw123" {
		t.Error("password stored in plaintext")
	}
	if user.Role != models.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, models.RoleUser)
	}
	if strings.Contains(rr.Body.String(), "pw123") || strings.Contains(rr.Body.String(), user.PasswordHash) {
		t.Error("response echoes sensitive data")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, env := newAuthHandler(t)

	if rr := postJSON(t, h.Register, "/auth/register", `{"email":"a@x.com","password":"first"}`); rr.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", rr.Code)
	}
	var before models.User
	if err := env.DB.Get(&before, "SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?", "a@x.com"); err != nil {
		t.Fatalf("load user: %v", err)
	}

	rr := postJSON(t, h.Register, "/auth/register", `{"email":"a@x.com","password":"second"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("second register status = %d, want 400", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "Email already exists" {
		t.Errorf("message = %q, want %q", resp["message"], "Email already exists")
	}

	// First user's record must be unchanged.
	var after models.User
	if err := env.DB.Get(&after, "SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?", "a@x.com"); err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if after.ID != before.ID || after.PasswordHash != before.PasswordHash {
		t.Error("first user's record changed after duplicate register")
	}
	if n := countRows(t, env.DB, "SELECT COUNT(*) FROM users"); n != 1 {
		t.Errorf("user rows = %d, want 1", n)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	h, env := newAuthHandler(t)
	user := mustCreateUser(t, env.DB, "a@x.com", "pw123", models.RoleUser)

	rr := postJSON(t, h.Login, "/auth/login", `{"email":"a@x.com","password":"pw123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	token := resp["access_token"]
	if token == "" {
		t.Fatal("no access_token in response")
	}

	issuer := auth.NewIssuer([]byte("test-secret"), 24*time.Hour)
	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token subject = %d, want %d", userID, user.ID)
	}
}

// Wrong password and unknown email must be indistinguishable to the caller.
func TestLoginInvalidCredentialsIdentical(t *testing.T) {
	h, env := newAuthHandler(t)
	mustCreateUser(t, env.DB, "a@x.com", "pw123", models.RoleUser)

	wrongPassword := postJSON(t, h.Login, "/auth/login", `{"email":"a@x.com","password":"nope"}`)
	unknownEmail := postJSON(t, h.Login, "/auth/login", `{"email":"b@x.com","password":"pw123"}`)

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", wrongPassword.Code)
	}
	if unknownEmail.Code != wrongPassword.Code {
		t.Errorf("status differs: unknown email %d vs wrong password %d", unknownEmail.Code, wrongPassword.Code)
	}
	if unknownEmail.Body.String() != wrongPassword.Body.String() {
		t.Errorf("bodies differ: %q vs %q", unknownEmail.Body.String(), wrongPassword.Body.String())
	}
}

func TestLoginValidation(t *testing.T) {
	h, _ := newAuthHandler(t)
	for _, body := range []string{`{}`, `{"email":"bad","password":"x"}`, `{"email":"a@x.com"}`} {
		rr := postJSON(t, h.Login, "/auth/login", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rr.Code)
		}
	}
}
