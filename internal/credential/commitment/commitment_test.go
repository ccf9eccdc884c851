package commitment

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseInput() Input {
	return Input{
		StudentID:      "S1",
		UniversityID:   7,
		CredentialType: "degree",
		IssuedAt:       time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Nonce:          "aabbccddeeff00112233445566778899",
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	in := baseInput()
	first := Digest(in)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Digest(in))
	}
}

func TestDigestMatchesCanonicalLayout(t *testing.T) {
	in := baseInput()
	expectedPreimage := "S1-7-degree-" + "1741944413000" + "-aabbccddeeff00112233445566778899"
	require.Equal(t, expectedPreimage, in.CanonicalString())

	sum := sha256.Sum256([]byte(expectedPreimage))
	require.Equal(t, hex.EncodeToString(sum[:]), Digest(in))
}

func TestDigestChangesWithEachField(t *testing.T) {
	base := Digest(baseInput())

	mutations := map[string]Input{}

	in := baseInput()
	in.StudentID = "S2"
	mutations["student_id"] = in

	in = baseInput()
	in.UniversityID = 8
	mutations["university_id"] = in

	in = baseInput()
	in.CredentialType = "diploma"
	mutations["credential_type"] = in

	in = baseInput()
	in.IssuedAt = in.IssuedAt.Add(time.Millisecond)
	mutations["issued_at"] = in

	in = baseInput()
	in.Nonce = "ffffccddeeff00112233445566778899"
	mutations["nonce"] = in

	for field, mutated := range mutations {
		require.NotEqual(t, base, Digest(mutated), "changing %s must change the digest", field)
	}
}

func TestDigestFieldBoundariesDoNotCollide(t *testing.T) {
	// "ab" + "c" vs "a" + "bc" would collide under naive concatenation.
	left := baseInput()
	left.StudentID = "ab"
	left.CredentialType = "c"

	right := baseInput()
	right.StudentID = "a"
	right.CredentialType = "bc"

	require.NotEqual(t, Digest(left), Digest(right))
}

func TestDigestShape(t *testing.T) {
	digest := Digest(baseInput())
	require.Len(t, digest, HashLength)
	require.True(t, IsWellFormedHash(digest))
}

func TestNewNonceShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		nonce, err := NewNonce()
		require.NoError(t, err)
		require.Len(t, nonce, NonceLength)
		require.Equal(t, strings.ToLower(nonce), nonce)
		require.False(t, seen[nonce], "nonce repeated")
		seen[nonce] = true
	}
}

func TestIsWellFormedHash(t *testing.T) {
	valid := Digest(baseInput())

	cases := map[string]bool{
		valid:                          true,
		strings.ToUpper(valid):         false, // uppercase hex is rejected
		valid[:63]:                     false, // too short
		valid + "0":                    false, // too long
		strings.Replace(valid, valid[:1], "g", 1): false, // non-hex character
		"": false,
	}

	for input, want := range cases {
		require.Equal(t, want, IsWellFormedHash(input), "input %q", input)
	}
}
