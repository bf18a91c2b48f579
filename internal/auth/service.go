package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// HashAdminKey produces the value stored in ADMIN_KEY_HASH.
func HashAdminKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty admin key")
	}

	hashed, err := bcrypt.GenerateFromPassword(
		[]byte(key),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckAdminKey compares a presented key against the stored hash.
func CheckAdminKey(hash, key string) error {
	if hash == "" || key == "" {
		return ErrInvalidAdminKey
	}

	err := bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(key),
	)
	if err != nil {
		return ErrInvalidAdminKey
	}
	return nil
}
