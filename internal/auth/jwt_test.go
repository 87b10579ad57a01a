package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"todolist/internal/auth"
)

var secret = []byte("test-secret-key")

func TestGenerateAndParseToken(t *testing.T) {
	// Генерируем токен
	deviceID := "test-device-id"
	token, err := auth.GenerateToken(secret, deviceID, 24*time.Hour)

	// Проверяем, что токен создан без ошибок
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Парсим токен
	parsedDeviceID, err := auth.ParseToken(secret, token)

	// Проверяем, что из токена извлечен правильный ID устройства
	assert.NoError(t, err)
	assert.Equal(t, deviceID, parsedDeviceID)
}

func TestGenerateToken_NoExpiry(t *testing.T) {
	token, err := auth.GenerateToken(secret, "dev", 0)
	assert.NoError(t, err)

	deviceID, err := auth.ParseToken(secret, token)

	assert.NoError(t, err)
	assert.Equal(t, "dev", deviceID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	// Пытаемся парсить неверный токен
	_, err := auth.ParseToken(secret, "invalid-token")

	// Проверяем, что возникла ошибка
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := auth.GenerateToken([]byte("other"), "dev", time.Hour)

	_, err := auth.ParseToken(secret, token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	// Создаем токен с истекшим сроком действия
	claims := jwt.MapClaims{
		"device_id": "test-device-id",
		"exp":       time.Now().Add(-1 * time.Hour).Unix(), // Токен истек 1 час назад
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expiredToken, _ := token.SignedString(secret)

	// Пытаемся парсить истекший токен
	_, err := auth.ParseToken(secret, expiredToken)

	// Проверяем, что возникла ошибка
	assert.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_MissingClaims(t *testing.T) {
	// Создаем токен без ID устройства
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenWithoutDeviceID, _ := token.SignedString(secret)

	// Пытаемся парсить токен
	_, err := auth.ParseToken(secret, tokenWithoutDeviceID)

	// Проверяем, что возникла ошибка
	assert.Error(t, err)
	assert.Equal(t, "invalid claims", err.Error())
}
