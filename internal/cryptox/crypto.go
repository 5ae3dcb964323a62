// Package cryptox holds the credential-verification schemes and the session
// token signer used by the session manager.
package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

// MakeVerifier hashes a derived key so the key itself is never stored.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches password with argon2id (1 pass, 64 MiB, 4 lanes).
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}
