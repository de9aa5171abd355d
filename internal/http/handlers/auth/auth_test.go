package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stormarchive/timeline-service/internal/config"
	"github.com/stormarchive/timeline-service/internal/http/middleware"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/types/admins"
	"github.com/stormarchive/timeline-service/internal/utils/password"
)

type stubStorage struct {
	storage.Storage
	admin    admins.Admin
	adminErr error
	question admins.SecurityQuestion
}

func (s *stubStorage) GetAdminByUsername(username string) (admins.Admin, error) {
	if s.adminErr != nil {
		return admins.Admin{}, s.adminErr
	}
	if username != s.admin.Username {
		return admins.Admin{}, storage.ErrNotFound
	}
	return s.admin, nil
}

func (s *stubStorage) GetSecurityQuestion(id string) (admins.SecurityQuestion, error) {
	return s.question, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.SessionTTLHours = 24
	return cfg
}

func newStubStorage(t *testing.T, withQuestion bool) *stubStorage {
	t.Helper()

	passwordHash, err := password.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	admin := admins.Admin{ID: "1", Username: "curator", PasswordHash: passwordHash}
	store := &stubStorage{admin: admin}

	if withQuestion {
		answerHash, err := password.HashAnswer("The Misfits")
		if err != nil {
			t.Fatalf("Failed to hash answer: %v", err)
		}
		store.admin.SecurityQuestionID = "q1"
		store.admin.SecurityAnswerHash = answerHash
		store.question = admins.SecurityQuestion{ID: "q1", Question: "First concert attended?"}
	}

	return store
}

func postLogin(t *testing.T, store *stubStorage, body string) (*httptest.ResponseRecorder, admins.LoginResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Login(store, testConfig()).ServeHTTP(rec, req)

	var resp admins.LoginResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return rec, resp
}

func TestLoginSuccessWithoutQuestion(t *testing.T) {
	store := newStubStorage(t, false)

	rec, resp := postLogin(t, store, `{"username":"curator","password":"correct horse battery"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Admin == nil || resp.Admin.ID != "1" || resp.Token == "" {
		t.Fatalf("Expected admin and token, got %+v", resp)
	}
	if resp.RequiresSecurityAnswer {
		t.Fatal("Did not expect a challenge")
	}

	cookie := rec.Result().Cookies()
	if len(cookie) != 1 || cookie[0].Name != middleware.SessionCookieName || cookie[0].Value != resp.Token {
		t.Fatalf("Expected session cookie carrying the token, got %v", cookie)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newStubStorage(t, false)

	rec, _ := postLogin(t, store, `{"username":"curator","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("Expected no session cookie on failure")
	}
}

func TestLoginUnknownUsername(t *testing.T) {
	store := newStubStorage(t, false)

	rec, _ := postLogin(t, store, `{"username":"nobody","password":"correct horse battery"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestLoginChallengeIssuedAfterCorrectPassword(t *testing.T) {
	store := newStubStorage(t, true)

	rec, resp := postLogin(t, store, `{"username":"curator","password":"correct horse battery"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.RequiresSecurityAnswer || resp.Question != "First concert attended?" {
		t.Fatalf("Expected challenge with question, got %+v", resp)
	}
	if resp.Admin != nil || resp.Token != "" {
		t.Fatal("Expected no session before the answer")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("Expected no cookie before the answer")
	}
}

func TestLoginChallengeNotIssuedForWrongPassword(t *testing.T) {
	store := newStubStorage(t, true)

	rec, _ := postLogin(t, store, `{"username":"curator","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without leaking the question, got %d", rec.Code)
	}
}

func TestLoginAnswerIsCaseAndSpaceInsensitive(t *testing.T) {
	store := newStubStorage(t, true)

	rec, resp := postLogin(t, store, `{"username":"curator","password":"correct horse battery","security_answer":"  the misfits "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Admin == nil || resp.Token == "" {
		t.Fatalf("Expected authenticated response, got %+v", resp)
	}
}

func TestLoginWrongAnswer(t *testing.T) {
	store := newStubStorage(t, true)

	rec, _ := postLogin(t, store, `{"username":"curator","password":"correct horse battery","security_answer":"nirvana"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	Logout().ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookieName || cookies[0].MaxAge != -1 {
		t.Fatalf("Expected expired session cookie, got %v", cookies)
	}
}
