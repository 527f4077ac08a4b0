// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
)

// Credential record layout: salt followed by HMAC-SHA512(salt, password).
const (
	SaltLen = 128         // HMAC-SHA512 block size
	HashLen = sha512.Size // 64
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword derives a storable credential record from password using a fresh random salt.
func HashPassword(password string) (string, error) {
	salt, err := RandBytes(SaltLen)
	if err != nil {
		return "", err
	}
	rec := make([]byte, 0, SaltLen+HashLen)
	rec = append(rec, salt...)
	rec = append(rec, keyedHash(salt, password)...)
	return base64.StdEncoding.EncodeToString(rec), nil
}

// VerifyPassword reports whether password matches the stored credential record.
// Malformed records yield false.
func VerifyPassword(password, stored string) bool {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return false
	}
	if len(raw) < SaltLen {
		return false
	}
	salt, want := raw[:SaltLen], raw[SaltLen:]
	if len(want) < HashLen {
		return false
	}
	got := keyedHash(salt, password)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func keyedHash(salt []byte, password string) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
