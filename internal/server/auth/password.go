package auth

import (
	"errors"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for new secrets.
var HashCost = bcrypt.DefaultCost

// HashSecret returns the bcrypt hash of secret.
func HashSecret(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), HashCost)
}

// CompareSecret checks secret against hash in constant time. A mismatch
// yields common.ErrorUnauthorized.
func CompareSecret(hash []byte, secret string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(secret))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrorUnauthorized
	}
	return err
}
