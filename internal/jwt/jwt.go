package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linemk/recipe-vault/internal/config"
	"github.com/linemk/recipe-vault/internal/domain/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims — полезная нагрузка токена: идентификатор и email пользователя
type Claims struct {
	UserID int64
	Email  string
}

// TokenManager выпускает и проверяет пары access/refresh токенов.
// Секреты и TTL задаются конфигом один раз на старте и дальше не меняются.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt secrets are not set")
	}
	// одинаковые секреты ломают гарантию "refresh не принимается как access"
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     time.Duration(cfg.AccessTTL) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshTTL) * time.Minute,
	}, nil
}

// NewPair генерирует access и refresh токены для указанного пользователя
func (m *TokenManager) NewPair(user *models.User) (string, string, error) {
	access, err := sign(user, m.accessSecret, m.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := sign(user, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return access, refresh, nil
}

// ParseAccess проверяет подпись и срок действия access-токена
func (m *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return parse(tokenStr, m.accessSecret)
}

// ParseRefresh проверяет подпись и срок действия refresh-токена
func (m *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return parse(tokenStr, m.refreshSecret)
}

func sign(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", user.ID),
		"email": user.Email,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parse(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Проверка алгоритма
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, ok := mapClaims["email"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: userID, Email: email}, nil
}
