package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/linemk/recipe-vault/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestMustLoadByPath_Success(t *testing.T) {
	// Устанавливаем обязательные переменные окружения
	os.Setenv("DB_PASSWORD", "mypassword")
	os.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	os.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	os.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	defer os.Unsetenv("DB_PASSWORD")
	defer os.Unsetenv("ACCESS_TOKEN_SECRET")
	defer os.Unsetenv("REFRESH_TOKEN_SECRET")
	defer os.Unsetenv("STRIPE_SECRET_KEY")

	// Пример содержимого конфигурационного файла
	content := `
env: "local"
http_server:
  address: "localhost:8080"
  timeout: "4s"
  idle_timeout: "60s"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  name: "recipevault"
jwt:
  access_ttl: 15
  refresh_ttl: 10080
economy:
  recipe_price: 10
  author_reward: 1
  starting_balance: 50
  dedup_purchases: false
migrations:
  path: "./migrations"
`
	// Создаем временный файл с конфигурацией
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	err = tmpFile.Close()
	assert.NoError(t, err)

	// Загружаем конфигурацию из временного файла
	cfg := config.MustLoadByPath(tmpFile.Name())

	// Проверяем, что конфигурация загружена корректно
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "recipevault", cfg.Database.Name)
	assert.Equal(t, "access-secret", cfg.JWT.AccessSecret)
	assert.Equal(t, "refresh-secret", cfg.JWT.RefreshSecret)
	assert.Equal(t, 15, cfg.JWT.AccessTTL)
	assert.Equal(t, 10080, cfg.JWT.RefreshTTL)
	assert.Equal(t, 10, cfg.Economy.RecipePrice)
	assert.Equal(t, 1, cfg.Economy.AuthorReward)
	assert.Equal(t, 50, cfg.Economy.StartingBalance)
	assert.False(t, cfg.Economy.DedupPurchases)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, "./migrations", cfg.Migrations.Path)
}

func TestMustLoadByPath_FileNotFound(t *testing.T) {
	// Ожидаем панику, если файла не существует
	assert.Panics(t, func() {
		config.MustLoadByPath("non_existent_config.yaml")
	})
}
