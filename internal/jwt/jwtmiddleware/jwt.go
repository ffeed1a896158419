package jwtmiddleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	security "github.com/linemk/recipe-vault/internal/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// New создаёт middleware аутентификации: проверяет Bearer-токен
// и кладёт claims в контекст запроса
func New(tm *security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing token", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := tm.ParseAccess(parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSelf — вторая ступень авторизации: email из запроса (query ?email=
// либо поле email в JSON-теле) должен совпадать с email из токена.
// Ставится строго после New, без claims в контексте отвечает 401.
func RequireSelf(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			email := r.URL.Query().Get("email")
			if email == "" && r.Body != nil {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					http.Error(w, "invalid request", http.StatusBadRequest)
					return
				}
				// возвращаем тело на место, хендлер будет читать его повторно
				r.Body = io.NopCloser(bytes.NewReader(body))

				if len(body) > 0 {
					var probe struct {
						Email string `json:"email"`
					}
					if err := json.Unmarshal(body, &probe); err == nil {
						email = probe.Email
					}
				}
			}

			if email == "" || !strings.EqualFold(email, claims.Email) {
				log.Warn("ownership check failed",
					slog.String("tokenEmail", claims.Email),
					slog.String("requestEmail", email),
				)
				http.Error(w, "forbidden access", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FromContext извлекает claims из контекста.
func FromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*security.Claims)
	return claims, ok
}
