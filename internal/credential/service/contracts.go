package service

import (
	"github.com/Goodnessmbakara/BlockVerify/internal/wallet"
)

// KeypairSource supplies the cached process signing keypair.
type KeypairSource interface {
	Keypair() (wallet.Keypair, error)
}

// WriteStatus tags the outcome of an anchor write attempt.
type WriteStatus int

const (
	// WriteConfirmed means the ledger confirmed the anchoring transaction.
	WriteConfirmed WriteStatus = iota
	// WriteUnfunded means the signing account balance was below the fee
	// threshold, so no write was attempted.
	WriteUnfunded
	// WriteFailed means the write was attempted (or could not be prepared)
	// and did not reach confirmation.
	WriteFailed
)

// LedgerWriteOutcome is the explicit result of the anchor step. The issuance
// pipeline branches on it: failures route to the simulated fallback rather
// than failing the request.
type LedgerWriteOutcome struct {
	Status    WriteStatus
	Signature string // set when Status == WriteConfirmed
	Reason    error  // set when Status == WriteFailed
}
