// Package models holds the credential record and the request/response shapes
// shared by the issuance and verification pipelines.
package models

import (
	"strings"
	"time"
)

// CredentialType identifies the kind of academic credential being anchored.
type CredentialType string

const (
	CredentialTypeDegree      CredentialType = "degree"
	CredentialTypeDiploma     CredentialType = "diploma"
	CredentialTypeCertificate CredentialType = "certificate"
	CredentialTypeTranscript  CredentialType = "transcript"
)

// SimulatedPrefix marks transaction identifiers that were generated locally
// instead of confirmed by the ledger. The prefix is the persisted discriminator
// between the two trust modes; no separate flag is stored.
const SimulatedPrefix = "simulated_"

// TransactionRef is the anchoring reference of a credential: either a real
// ledger transaction signature or a locally generated simulated token. The
// prefixed string form exists only at the store boundary; everywhere else the
// tag is explicit.
type TransactionRef struct {
	simulated bool
	value     string
}

// RealRef wraps a confirmed ledger transaction signature.
func RealRef(signature string) TransactionRef {
	return TransactionRef{value: signature}
}

// SimulatedRef wraps a locally generated fallback token (without prefix).
func SimulatedRef(token string) TransactionRef {
	return TransactionRef{simulated: true, value: token}
}

// ParseTransactionRef reconstructs a reference from its persisted string form.
func ParseTransactionRef(s string) TransactionRef {
	if token, ok := strings.CutPrefix(s, SimulatedPrefix); ok {
		return SimulatedRef(token)
	}
	return RealRef(s)
}

// IsSimulated reports whether the credential was anchored in simulated mode.
func (r TransactionRef) IsSimulated() bool { return r.simulated }

// Signature returns the ledger transaction signature for real references and
// the empty string for simulated ones.
func (r TransactionRef) Signature() string {
	if r.simulated {
		return ""
	}
	return r.value
}

// String serializes the reference for persistence and API responses.
func (r TransactionRef) String() string {
	if r.simulated {
		return SimulatedPrefix + r.value
	}
	return r.value
}

// Credential is the anchored record. Hash, Nonce, IssuedAt and TxRef are set
// exactly once by the issuance pipeline and never mutated afterwards;
// verification is purely a read-side operation.
type Credential struct {
	ID             string
	StudentID      string
	UniversityID   int64
	CredentialType CredentialType
	IssuedAt       time.Time
	Nonce          string
	Hash           string
	TxRef          TransactionRef
}

// IssueRequest is the validated payload of an issuance call.
type IssueRequest struct {
	StudentID      string `json:"student_id" validate:"required,notblank,max=64"`
	UniversityID   int64  `json:"university_id" validate:"required,gt=0"`
	CredentialType string `json:"credential_type" validate:"required,oneof=degree diploma certificate transcript"`
}

// IssuedCredential is the issuance result handed back to the caller.
type IssuedCredential struct {
	Credential Credential
	Simulated  bool
}

// BlockchainProof carries the ledger evidence backing a real-mode verification.
type BlockchainProof struct {
	TransactionID string
	Slot          uint64
	BlockTime     time.Time
	Confirmations uint64
	Finalized     bool
}

// VerificationResult is the outcome of a successful verification. The nonce is
// never included: exposing it would let anyone reconstruct preimages for
// guessed payloads.
type VerificationResult struct {
	StudentID      string
	UniversityID   int64
	CredentialType CredentialType
	IssuedAt       time.Time
	Hash           string
	SimulatedOnly  bool
	Proof          *BlockchainProof
}
