package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dsa_arena/internal/common/security"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
)

func setupJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("mw-secret"), JWTExp: time.Hour}
	security.InitJWT()
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserIDFromContext(r.Context())
		role, _ := GetUserRoleFromContext(r.Context())
		w.Write([]byte(id + "|" + role))
	})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	jwtauth.Verifier(security.TokenAuth)(h).ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator(t *testing.T) {
	setupJWT(t)
	tok, err := security.GenerateToken("u1", model.RoleUser)
	if err != nil {
		t.Fatal(err)
	}

	if rec := serve(Authenticator(echoIdentity()), ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", rec.Code)
	}
	if rec := serve(Authenticator(echoIdentity()), "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}
	rec := serve(Authenticator(echoIdentity()), tok)
	if rec.Code != http.StatusOK || rec.Body.String() != "u1|user" {
		t.Fatalf("valid token: %d %q", rec.Code, rec.Body.String())
	}
}

func TestOptionalUser(t *testing.T) {
	setupJWT(t)
	tok, _ := security.GenerateToken("u2", model.RoleAdmin)

	if rec := serve(OptionalUser(echoIdentity()), ""); rec.Code != http.StatusOK || rec.Body.String() != "|" {
		t.Fatalf("anonymous: %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(OptionalUser(echoIdentity()), "garbage"); rec.Code != http.StatusOK || rec.Body.String() != "|" {
		t.Fatalf("invalid token should be ignored: %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(OptionalUser(echoIdentity()), tok); rec.Body.String() != "u2|admin" {
		t.Fatalf("valid token: %q", rec.Body.String())
	}
}

func TestAdminOnly(t *testing.T) {
	setupJWT(t)
	userTok, _ := security.GenerateToken("u1", model.RoleUser)
	adminTok, _ := security.GenerateToken("a1", model.RoleAdmin)

	h := Authenticator(AdminOnly(echoIdentity()))
	if rec := serve(h, userTok); rec.Code != http.StatusForbidden {
		t.Fatalf("user status = %d", rec.Code)
	}
	if rec := serve(h, adminTok); rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d", rec.Code)
	}
}
