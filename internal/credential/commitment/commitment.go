// Package commitment builds the deterministic digest binding a credential's
// payload and nonce. The digest is the credential's ledger-anchored
// fingerprint: everything else in the system addresses records by it.
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	dErrors "github.com/Goodnessmbakara/BlockVerify/pkg/domain-errors"
)

// HashLength is the lexical length of a hex-encoded SHA-256 digest.
const HashLength = 64

// NonceLength is the lexical length of a hex-encoded issuance nonce.
const NonceLength = 32

// Input carries the fields bound by the commitment. The record store ID is
// deliberately absent: the digest must be reproducible before the record exists.
type Input struct {
	StudentID      string
	UniversityID   int64
	CredentialType string
	IssuedAt       time.Time
	Nonce          string
}

// CanonicalString renders the input in the fixed separator layout hashed by
// Digest. The separator prevents field-boundary collisions ("ab"+"c" vs
// "a"+"bc") and the millisecond timestamp survives JSON and SQL round-trips,
// so a stored record always re-derives its own hash.
func (in Input) CanonicalString() string {
	return fmt.Sprintf("%s-%d-%s-%d-%s",
		in.StudentID,
		in.UniversityID,
		in.CredentialType,
		in.IssuedAt.UTC().UnixMilli(),
		in.Nonce,
	)
}

// Digest returns the lowercase hex SHA-256 commitment for the input.
func Digest(in Input) string {
	sum := sha256.Sum256([]byte(in.CanonicalString()))
	return hex.EncodeToString(sum[:])
}

// NewNonce returns a fresh hex nonce from a cryptographically secure source.
// Nonces keep low-entropy payloads (short student IDs, small enums) from being
// brute-forced back out of an anchored digest.
func NewNonce() (string, error) {
	buf := make([]byte, NonceLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}
	return hex.EncodeToString(buf), nil
}

// IsWellFormedHash reports whether s has the exact lexical shape of a
// commitment digest: lowercase hex, fixed length. Checked at the verification
// boundary before any store lookup.
func IsWellFormedHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
