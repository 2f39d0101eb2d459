package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes an account password with the configured
// cost (BCRYPT_COST; tests use a low cost to stay fast).
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored hash against a login attempt in
// constant time. The login handler reports the same invalid-credentials
// notice for a bad password and an unknown username.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
