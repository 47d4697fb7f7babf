package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mind-engage/corector/internal/auth"
	authmw "github.com/mind-engage/corector/internal/auth/middleware"
	"github.com/mind-engage/corector/internal/rbac"
)

func newService(t *testing.T) *authmw.AuthService {
	t.Helper()
	hash, err := authmw.HashPassword("parola")
	if err != nil {
		t.Fatal(err)
	}
	return authmw.NewAuthService("secret", authmw.ParseAccounts([]string{"ana:" + hash, "broken"}, rbac.RoleTeacher)...)
}

func TestLoginAndMiddleware(t *testing.T) {
	a := newService(t)

	rec := httptest.NewRecorder()
	authmw.LoginHandler(a)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ana","password":"parola"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body)
	}
	var out map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &out)

	var got auth.Context
	h := authmw.JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.FromRequest(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+out["access_token"])
	req.Header.Set(auth.GoogleTokenHeader, "ya29.x")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got.TeacherID != "ana" || got.Role != rbac.RoleTeacher || got.Guest || got.GoogleAccessToken != "ya29.x" {
		t.Fatalf("%+v", got)
	}

	rec = httptest.NewRecorder()
	authmw.LoginHandler(a)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ana","password":"gresit"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password = %d", rec.Code)
	}
}

func TestMiddlewareRejectsBadToken(t *testing.T) {
	a := newService(t)
	h := authmw.JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for _, hdr := range []string{"", "Bearer nope", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if hdr != "" {
			req.Header.Set("Authorization", hdr)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: %d", hdr, rec.Code)
		}
	}
}

func TestGuestLoginReusesCookie(t *testing.T) {
	a := newService(t)
	rec := httptest.NewRecorder()
	auth.GuestLoginHandler(a, true)(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !strings.HasPrefix(cookies[0].Value, "guest|") {
		t.Fatalf("cookies = %+v", cookies)
	}
	var out map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	c, err := a.Parse(out["access_token"])
	if err != nil || !c.Guest || c.Role != rbac.RoleGuest || c.Sub != cookies[0].Value {
		t.Fatalf("claims = %+v %v", c, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/guest", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	auth.GuestLoginHandler(a, true)(rec2, req)
	if rec2.Result().Cookies()[0].Value != cookies[0].Value {
		t.Fatal("guest id not reused")
	}

	rec3 := httptest.NewRecorder()
	auth.GuestLoginHandler(a, false)(rec3, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	if rec3.Code != http.StatusForbidden {
		t.Fatalf("disabled = %d", rec3.Code)
	}
}
