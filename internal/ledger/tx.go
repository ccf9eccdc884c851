package ledger

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
)

// MemoProgramID is the well-known memo program (v2). It accepts arbitrary
// bytes as instruction data and writes nothing, which makes it a bulletin
// board for commitment hashes.
const MemoProgramID = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"

// Transaction is a signed, wire-ready transaction. Signatures precede the
// serialized message per the network's legacy transaction layout.
type Transaction struct {
	signature []byte
	message   []byte
}

// NewMemoTransaction builds and signs a single-instruction transaction
// addressed to the memo program, carrying data as the opaque payload.
// The fee payer is the only signer and the only writable account.
func NewMemoTransaction(payer ed25519.PrivateKey, recentBlockhash string, data []byte) (*Transaction, error) {
	if len(payer) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("payer key must be %d bytes, got %d", ed25519.PrivateKeySize, len(payer))
	}
	blockhash, err := base58.Decode(recentBlockhash)
	if err != nil {
		return nil, fmt.Errorf("decode recent blockhash: %w", err)
	}
	if len(blockhash) != 32 {
		return nil, fmt.Errorf("recent blockhash must be 32 bytes, got %d", len(blockhash))
	}
	memoProgram, err := base58.Decode(MemoProgramID)
	if err != nil {
		return nil, fmt.Errorf("decode memo program id: %w", err)
	}

	payerPub := payer.Public().(ed25519.PublicKey)
	message := buildMessage(payerPub, memoProgram, blockhash, data)
	signature := ed25519.Sign(payer, message)

	return &Transaction{signature: signature, message: message}, nil
}

// buildMessage serializes a legacy message with header {1 required signature,
// 0 readonly signed, 1 readonly unsigned}, account keys [payer, memo program],
// and one instruction referencing no accounts.
func buildMessage(payerPub, memoProgram, blockhash, data []byte) []byte {
	var msg []byte

	// Header
	msg = append(msg, 1, 0, 1)

	// Account keys
	msg = appendShortvecLen(msg, 2)
	msg = append(msg, payerPub...)
	msg = append(msg, memoProgram...)

	// Recent blockhash
	msg = append(msg, blockhash...)

	// Instructions
	msg = appendShortvecLen(msg, 1)
	msg = append(msg, 1)          // program id index: memo program
	msg = appendShortvecLen(msg, 0) // no account references
	msg = appendShortvecLen(msg, len(data))
	msg = append(msg, data...)

	return msg
}

// appendShortvecLen appends n in the network's compact-u16 length encoding:
// 7 bits per byte, high bit marks continuation.
func appendShortvecLen(buf []byte, n int) []byte {
	for {
		if n < 0x80 {
			return append(buf, byte(n))
		}
		buf = append(buf, byte(n&0x7f)|0x80)
		n >>= 7
	}
}

// Signature returns the base58 transaction signature, which doubles as the
// transaction identifier on the network.
func (t *Transaction) Signature() string {
	return base58.Encode(t.signature)
}

// Message returns the serialized message bytes covered by the signature.
func (t *Transaction) Message() []byte {
	return t.message
}

// Serialize returns the full wire form: shortvec signature count, signatures,
// then the message.
func (t *Transaction) Serialize() []byte {
	var out []byte
	out = appendShortvecLen(out, 1)
	out = append(out, t.signature...)
	out = append(out, t.message...)
	return out
}

// Base64 returns the serialized transaction in the encoding expected by
// sendTransaction.
func (t *Transaction) Base64() string {
	return base64.StdEncoding.EncodeToString(t.Serialize())
}
