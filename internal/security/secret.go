package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost defines the bcrypt work factor for group secrets.
const bcryptCost = 12

// HashSecret hashes a plaintext group secret using bcrypt.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckSecret compares a bcrypt digest with a plaintext secret.
func CheckSecret(digest, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
