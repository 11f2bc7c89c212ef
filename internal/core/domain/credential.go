package domain

import "golang.org/x/crypto/bcrypt"

// BcryptVerifier verifies bcrypt-hashed passwords. Accounts carrying a plain
// or empty password fall back to the legacy comparison so old records keep
// working while new ones are hashed.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(stored, given string) bool {
	if len(stored) == 0 {
		return given == DefaultPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)); err == nil {
		return true
	}
	return PlaintextVerifier{}.Verify(stored, given)
}

// HashPassword produces a bcrypt hash suitable for storing on a User record.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
