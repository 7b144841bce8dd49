package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// HashPassword salts and hashes a plaintext password. The salt is generated
// fresh per call and embedded in the output, so hashing the same password
// twice yields different hashes.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

// CheckPasswordHash reports whether password matches the stored hash.
func CheckPasswordHash(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
