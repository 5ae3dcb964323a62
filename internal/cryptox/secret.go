package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// SecretScheme turns a password into stored credential material and checks
// a candidate password against it. The session manager only talks to this
// interface, so the scheme can change without touching its state machine.
type SecretScheme interface {
	Name() string
	Seal(password string) (string, error)
	Verify(secret, password string) bool
}

// SchemeByName resolves the config value of the secret scheme.
func SchemeByName(name string) (SecretScheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return PlainScheme{}, nil
	case "argon2":
		return Argon2Scheme{}, nil
	case "bcrypt":
		return BcryptScheme{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown secret scheme %q", name)
	}
}

// PlainScheme stores the password as is and compares by exact match.
// It exists for parity with the local-only prototype; prefer argon2 or bcrypt.
type PlainScheme struct{}

func (PlainScheme) Name() string { return "plain" }

func (PlainScheme) Seal(password string) (string, error) { return password, nil }

func (PlainScheme) Verify(secret, password string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

const argon2Prefix = "argon2id"

// Argon2Scheme stores "argon2id$<salt>$<verifier>" with a random 32-byte
// salt and the verifier of the derived key, both base64 (raw std).
type Argon2Scheme struct{}

func (Argon2Scheme) Name() string { return "argon2" }

func (Argon2Scheme) Seal(password string) (string, error) {
	salt := common.GenerateRandByteArray(32)
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key := DeriveMasterKey(pw, salt)
	defer common.WipeByteArray(key)

	enc := base64.RawStdEncoding
	return strings.Join([]string{argon2Prefix, enc.EncodeToString(salt), enc.EncodeToString(MakeVerifier(key))}, "$"), nil
}

func (Argon2Scheme) Verify(secret, password string) bool {
	parts := strings.Split(secret, "$")
	if len(parts) != 3 || parts[0] != argon2Prefix {
		return false
	}
	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[1])
	if err != nil {
		return false
	}
	verifier, err := enc.DecodeString(parts[2])
	if err != nil {
		return false
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)
	key := DeriveMasterKey(pw, salt)
	defer common.WipeByteArray(key)

	return subtle.ConstantTimeCompare(verifier, MakeVerifier(key)) == 1
}

type BcryptScheme struct {
	Cost int
}

func (BcryptScheme) Name() string { return "bcrypt" }

func (s BcryptScheme) Seal(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (BcryptScheme) Verify(secret, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
}
