package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// prehash folds passwords of any length into 44 bytes, below bcrypt's
// 72-byte input limit.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func IsHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// CheckPassword also accepts plaintext records written before hashing was
// introduced.
func CheckPassword(stored, password string) bool {
	if !IsHash(stored) {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), prehash(password)) == nil
}
