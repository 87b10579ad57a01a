package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DeviceIDClaim = "device_id"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// GenerateToken signs a session token for the device. A zero ttl yields a
// token without expiry.
func GenerateToken(secret []byte, deviceID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		DeviceIDClaim: deviceID,
		"iat":         time.Now().Unix(),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates tokenStr and returns the device id it was issued for.
func ParseToken(secret []byte, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidClaims
	}
	deviceID, ok := claims[DeviceIDClaim].(string)
	if !ok || deviceID == "" {
		return "", ErrInvalidClaims
	}

	return deviceID, nil
}
