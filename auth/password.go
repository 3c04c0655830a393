package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is high enough to resist offline brute force on leaked hashes.
const bcryptCost = 12

// HashPassword returns a one-way adaptive hash of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies the plaintext against the stored hash. The compare
// is constant-time inside bcrypt; plaintext is never compared directly.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
