// Package ledger talks to the Solana network: it carries commitment hashes
// on-chain inside memo-program instructions and reads them back during
// verification. The rest of the system treats it as a black box behind Client.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by GetTransaction when the ledger has no record of
// the signature. Distinct from transport failures so verification can tell
// "anchor missing" apart from "ledger unreachable".
var ErrNotFound = errors.New("ledger: transaction not found")

// Instruction is one decoded instruction of a fetched transaction.
type Instruction struct {
	ProgramID string // base58 program address
	Data      []byte // raw instruction payload
}

// TransactionInfo is the read-side view of a confirmed transaction.
type TransactionInfo struct {
	Signature     string
	Slot          uint64
	BlockTime     time.Time
	Confirmations uint64
	Finalized     bool // confirmations are unbounded once finalized
	Instructions  []Instruction
}

// Client is the network contract consumed by the pipelines and the liveness
// monitor. Implementations make at most one attempt per call; retry policy
// belongs to callers.
type Client interface {
	// Balance returns the account balance in lamports.
	Balance(ctx context.Context, address string) (uint64, error)

	// LatestBlockhash returns the current recent-block reference required to
	// build a transaction. Also doubles as the ledger liveness probe.
	LatestBlockhash(ctx context.Context) (string, error)

	// SubmitTransaction submits a signed transaction and waits for network
	// confirmation, returning the transaction signature.
	SubmitTransaction(ctx context.Context, tx *Transaction) (string, error)

	// GetTransaction fetches a confirmed transaction by signature, or
	// ErrNotFound if the ledger has no record of it.
	GetTransaction(ctx context.Context, signature string) (*TransactionInfo, error)
}
