package auth

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	GetToken() (string, error)
	SaveToken(token string) error
}

// EnsureToken keeps the stored token when it is still valid for deviceID and
// issues a fresh one otherwise.
func EnsureToken(store TokenStore, secret []byte, deviceID string, ttl time.Duration, logger log.FieldLogger) (string, error) {
	if tok, err := store.GetToken(); err == nil {
		if owner, err := ParseToken(secret, tok); err == nil && owner == deviceID {
			return tok, nil
		}
		logger.Info("stored session token rejected, issuing a new one")
	}

	tok, err := GenerateToken(secret, deviceID, ttl)
	if err != nil {
		return "", err
	}
	if err := store.SaveToken(tok); err != nil {
		return "", err
	}
	logger.WithField("device_id", deviceID).Info("issued session token")
	return tok, nil
}
