package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func testKeypair(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv
}

func testBlockhash(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return base58.Encode(raw)
}

func TestNewMemoTransactionSignatureVerifies(t *testing.T) {
	payer := testKeypair(t)
	payload := []byte("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")

	tx, err := NewMemoTransaction(payer, testBlockhash(t), payload)
	require.NoError(t, err)

	sig, err := base58.Decode(tx.Signature())
	require.NoError(t, err)
	require.Len(t, sig, ed25519.SignatureSize)

	pub := payer.Public().(ed25519.PublicKey)
	require.True(t, ed25519.Verify(pub, tx.Message(), sig))
}

func TestNewMemoTransactionMessageLayout(t *testing.T) {
	payer := testKeypair(t)
	payload := []byte("abc")

	tx, err := NewMemoTransaction(payer, testBlockhash(t), payload)
	require.NoError(t, err)

	msg := tx.Message()
	// Header: one required signature, no readonly signed, one readonly unsigned.
	require.Equal(t, []byte{1, 0, 1}, msg[:3])
	// Two account keys: payer then memo program.
	require.Equal(t, byte(2), msg[3])
	pub := payer.Public().(ed25519.PublicKey)
	require.Equal(t, []byte(pub), msg[4:36])
	memoProgram, err := base58.Decode(MemoProgramID)
	require.NoError(t, err)
	require.Equal(t, memoProgram, msg[36:68])
	// Blockhash occupies the next 32 bytes; then one instruction follows.
	instr := msg[100:]
	require.Equal(t, byte(1), instr[0]) // instruction count
	require.Equal(t, byte(1), instr[1]) // program id index
	require.Equal(t, byte(0), instr[2]) // no account references
	require.Equal(t, byte(len(payload)), instr[3])
	require.Equal(t, payload, instr[4:])
}

func TestSerializePrependsSignature(t *testing.T) {
	payer := testKeypair(t)

	tx, err := NewMemoTransaction(payer, testBlockhash(t), []byte("x"))
	require.NoError(t, err)

	wire := tx.Serialize()
	require.Equal(t, byte(1), wire[0])
	require.Len(t, wire, 1+ed25519.SignatureSize+len(tx.Message()))
	require.Equal(t, tx.Message(), wire[1+ed25519.SignatureSize:])
	require.NotEmpty(t, tx.Base64())
}

func TestNewMemoTransactionRejectsBadInputs(t *testing.T) {
	payer := testKeypair(t)

	_, err := NewMemoTransaction(payer[:16], testBlockhash(t), []byte("x"))
	require.Error(t, err)

	_, err = NewMemoTransaction(payer, "not-base58-!!!", []byte("x"))
	require.Error(t, err)

	_, err = NewMemoTransaction(payer, base58.Encode([]byte("short")), []byte("x"))
	require.Error(t, err)
}

func TestAppendShortvecLen(t *testing.T) {
	cases := map[int][]byte{
		0:     {0x00},
		1:     {0x01},
		127:   {0x7f},
		128:   {0x80, 0x01},
		300:   {0xac, 0x02},
		16384: {0x80, 0x80, 0x01},
	}
	for n, want := range cases {
		require.Equal(t, want, appendShortvecLen(nil, n), "n=%d", n)
	}
}
