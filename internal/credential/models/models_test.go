package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealRefRoundTrip(t *testing.T) {
	ref := RealRef("5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW")

	require.False(t, ref.IsSimulated())
	require.Equal(t, ref.String(), ref.Signature())
	require.Equal(t, ref, ParseTransactionRef(ref.String()))
}

func TestSimulatedRefRoundTrip(t *testing.T) {
	ref := SimulatedRef("a1b2c3d4e5f60718293a4b5c6d7e8f90")

	require.True(t, ref.IsSimulated())
	require.Empty(t, ref.Signature())
	require.Equal(t, "simulated_a1b2c3d4e5f60718293a4b5c6d7e8f90", ref.String())
	require.Equal(t, ref, ParseTransactionRef(ref.String()))
}

func TestParseTransactionRefDiscriminatesByPrefix(t *testing.T) {
	require.True(t, ParseTransactionRef("simulated_deadbeef").IsSimulated())
	require.False(t, ParseTransactionRef("deadbeef").IsSimulated())
	// A signature that merely contains the word elsewhere is still real.
	require.False(t, ParseTransactionRef("xsimulated_deadbeef").IsSimulated())
}
