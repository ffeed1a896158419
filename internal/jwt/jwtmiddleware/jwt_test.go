package jwtmiddleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linemk/recipe-vault/internal/config"
	"github.com/linemk/recipe-vault/internal/domain/models"
	security "github.com/linemk/recipe-vault/internal/jwt"
	"github.com/linemk/recipe-vault/internal/jwt/jwtmiddleware"
)

func newTestManager(t *testing.T) *security.TokenManager {
	t.Helper()
	tm, err := security.NewTokenManager(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15,
		RefreshTTL:    60,
	})
	assert.NoError(t, err)
	return tm
}

func accessTokenFor(t *testing.T, tm *security.TokenManager, id int64, email string) string {
	t.Helper()
	access, _, err := tm.NewPair(&models.User{ID: id, Email: email})
	assert.NoError(t, err)
	return access
}

func TestJWTMiddleware_MissingAuthorization(t *testing.T) {
	middleware := jwtmiddleware.New(newTestManager(t))
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status when no token provided")
	assert.True(t, strings.Contains(rr.Body.String(), "missing token"))
}

func TestJWTMiddleware_InvalidAuthorizationFormat(t *testing.T) {
	middleware := jwtmiddleware.New(newTestManager(t))
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token format")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token format"))
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	middleware := jwtmiddleware.New(newTestManager(t))
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.value")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token"))
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tm := newTestManager(t)
	middleware := jwtmiddleware.New(tm)

	var gotClaims *security.Claims
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwtmiddleware.FromContext(r.Context())
		assert.True(t, ok, "Claims should be present in context")
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tm, 7, "user@example.com"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(7), gotClaims.UserID)
	assert.Equal(t, "user@example.com", gotClaims.Email)
}

// refresh-токен не должен проходить ступень аутентификации
func TestJWTMiddleware_RefreshTokenRejected(t *testing.T) {
	tm := newTestManager(t)
	middleware := jwtmiddleware.New(tm)
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	_, refresh, err := tm.NewPair(&models.User{ID: 7, Email: "user@example.com"})
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func ownedPipeline(t *testing.T, tm *security.TokenManager, next http.Handler) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	// обе ступени в штатном порядке: аутентификация, затем проверка владения
	return jwtmiddleware.New(tm)(jwtmiddleware.RequireSelf(logger)(next))
}

func TestRequireSelf_BodyEmailMatch(t *testing.T) {
	tm := newTestManager(t)

	var seenBody []byte
	handler := ownedPipeline(t, tm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// тело должно быть читаемо даже после того, как его прочитала middleware
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		seenBody = body
		w.WriteHeader(http.StatusOK)
	}))

	reqBody := `{"email": "a@x.com", "user_id": 1, "recipe_id": 2}`
	req := httptest.NewRequest("POST", "/buy-recipe", bytes.NewBufferString(reqBody))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tm, 1, "a@x.com"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var probe map[string]interface{}
	assert.NoError(t, json.Unmarshal(seenBody, &probe), "Handler must receive the original body")
	assert.Equal(t, "a@x.com", probe["email"])
}

func TestRequireSelf_BodyEmailMismatch(t *testing.T) {
	tm := newTestManager(t)
	handler := ownedPipeline(t, tm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// токен выписан для a@x.com, в теле b@x.com
	reqBody := `{"email": "b@x.com"}`
	req := httptest.NewRequest("POST", "/buy-recipe", bytes.NewBufferString(reqBody))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tm, 1, "a@x.com"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code, "Expected 403 when body email differs from token email")
}

func TestRequireSelf_QueryEmail(t *testing.T) {
	tm := newTestManager(t)
	handler := ownedPipeline(t, tm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/like?email=a@x.com", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tm, 1, "a@x.com"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireSelf_MissingEmail(t *testing.T) {
	tm := newTestManager(t)
	handler := ownedPipeline(t, tm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/like", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tm, 1, "a@x.com"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code, "Expected 403 when request carries no email at all")
}

// RequireSelf без предшествующей аутентификации — ошибка композиции, отвечаем 401
func TestRequireSelf_WithoutAuthStage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	handler := jwtmiddleware.RequireSelf(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/like?email=a@x.com", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
