// Package wallet owns the process's ledger signing keypair: the fee payer
// whose signature authorizes anchor writes.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/mr-tron/base58"

	dErrors "github.com/Goodnessmbakara/BlockVerify/pkg/domain-errors"
)

// Keypair is a resolved ed25519 signing keypair addressed by its base58 public key.
type Keypair struct {
	PrivateKey ed25519.PrivateKey
}

// PublicKey returns the raw public key.
func (k Keypair) PublicKey() ed25519.PublicKey {
	return k.PrivateKey.Public().(ed25519.PublicKey)
}

// Address returns the base58 account address used on the ledger.
func (k Keypair) Address() string {
	return base58.Encode(k.PublicKey())
}

// ExportBase58 returns the secret key in the compact base58 form accepted by
// WALLET_SECRET_KEY and common wallet imports.
func (k Keypair) ExportBase58() string {
	return base58.Encode(k.PrivateKey)
}

// ExportJSONArray returns the secret key as a JSON integer array, the file
// format used by ledger command-line tooling.
func (k Keypair) ExportJSONArray() string {
	// json.Marshal encodes []byte as base64, so marshal ints explicitly.
	ints := make([]int, len(k.PrivateKey))
	for i, b := range k.PrivateKey {
		ints[i] = int(b)
	}
	raw, _ := json.Marshal(ints)
	return string(raw)
}

// GenerateKeypair creates a fresh keypair from a cryptographically secure
// source. Stateless operator utility, independent of the cached instance.
func GenerateKeypair() (Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate keypair")
	}
	return Keypair{PrivateKey: priv}, nil
}

// Manager resolves the signing keypair exactly once per process and caches it.
// After resolution the keypair is immutable and safe for concurrent reads.
type Manager struct {
	secret string
	logger *slog.Logger

	once sync.Once
	kp   Keypair
	err  error
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a key manager around the externally supplied secret.
// An empty secret means a keypair will be generated on first use.
func NewManager(secret string, opts ...Option) *Manager {
	m := &Manager{secret: strings.TrimSpace(secret)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Keypair returns the process signing keypair, resolving it on first call.
// Concurrent first calls resolve to exactly one instance. A decode failure is
// a fatal configuration error and is returned on every subsequent call.
func (m *Manager) Keypair() (Keypair, error) {
	m.once.Do(func() {
		m.kp, m.err = m.resolve()
	})
	return m.kp, m.err
}

func (m *Manager) resolve() (Keypair, error) {
	if m.secret == "" {
		kp, err := GenerateKeypair()
		if err != nil {
			return Keypair{}, err
		}
		if m.logger != nil {
			// Operator-visible, once per process: a generated key holds zero
			// funds, so issuance runs in simulated mode until it is funded.
			m.logger.Warn("no wallet secret configured, generated a new signing keypair",
				"address", kp.Address(),
				"secret_key_base58", kp.ExportBase58(),
				"hint", "set WALLET_SECRET_KEY to this value and fund the address to enable real anchoring",
			)
		}
		return kp, nil
	}
	return DecodeSecret(m.secret)
}

// DecodeSecret parses an externally supplied secret key in either of the two
// supported encodings: a compact base58 string, or a JSON integer array.
func DecodeSecret(secret string) (Keypair, error) {
	secret = strings.TrimSpace(secret)

	var raw []byte
	if strings.HasPrefix(secret, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(secret), &ints); err != nil {
			return Keypair{}, dErrors.Wrap(err, dErrors.CodeInvalidKeyFormat, "wallet secret is not a valid JSON array")
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return Keypair{}, dErrors.New(dErrors.CodeInvalidKeyFormat, "wallet secret array values must be bytes")
			}
			raw[i] = byte(v)
		}
	} else {
		decoded, err := base58.Decode(secret)
		if err != nil {
			return Keypair{}, dErrors.Wrap(err, dErrors.CodeInvalidKeyFormat, "wallet secret is not valid base58")
		}
		raw = decoded
	}

	switch len(raw) {
	case ed25519.PrivateKeySize:
		return Keypair{PrivateKey: ed25519.PrivateKey(raw)}, nil
	case ed25519.SeedSize:
		return Keypair{PrivateKey: ed25519.NewKeyFromSeed(raw)}, nil
	default:
		return Keypair{}, dErrors.New(dErrors.CodeInvalidKeyFormat, "wallet secret must decode to 64 or 32 bytes")
	}
}
