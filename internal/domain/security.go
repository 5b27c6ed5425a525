package domain

import "golang.org/x/crypto/bcrypt"

// HashAdminPassword produces a bcrypt hash suitable for the
// ADMIN_PASSWORD_HASH configuration value.
func HashAdminPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAdminPassword checks a login attempt against the configured hash.
func VerifyAdminPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
