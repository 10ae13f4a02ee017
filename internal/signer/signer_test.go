package signer

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// well-known dev key (hardhat account 0), never used outside tests
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var testContract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func testAttestation() *Attestation {
	return &Attestation{
		MilestoneID: crypto.Keccak256Hash([]byte("green-h2-pilot:q1-500mwh")),
		Value:       big.NewInt(500),
		DataHash:    crypto.Keccak256Hash([]byte("evidence")),
		Deadline:    big.NewInt(1893456000),
		Nonce:       big.NewInt(42),
	}
}

func TestNewLocalSignerAddress(t *testing.T) {
	s, err := NewLocalSigner(testKey, 31337, testContract)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", s.Address().Hex())

	// 0x prefix is accepted too
	s2, err := NewLocalSigner("0x"+testKey, 31337, testContract)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), s2.Address())
}

func TestNewLocalSignerRejectsBadKey(t *testing.T) {
	_, err := NewLocalSigner("not-a-key", 31337, testContract)
	assert.Error(t, err)
}

func TestSignShape(t *testing.T) {
	s, err := NewLocalSigner(testKey, 31337, testContract)
	require.NoError(t, err)

	sig, err := s.Sign(context.Background(), testAttestation())
	require.NoError(t, err)

	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])
}

func TestSignDeterministic(t *testing.T) {
	s, err := NewLocalSigner(testKey, 31337, testContract)
	require.NoError(t, err)

	a, err := s.Sign(context.Background(), testAttestation())
	require.NoError(t, err)
	b, err := s.Sign(context.Background(), testAttestation())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSignCommitsToFields(t *testing.T) {
	s, err := NewLocalSigner(testKey, 31337, testContract)
	require.NoError(t, err)

	base, err := s.Sign(context.Background(), testAttestation())
	require.NoError(t, err)

	changed := testAttestation()
	changed.Value = big.NewInt(501)
	sig, err := s.Sign(context.Background(), changed)
	require.NoError(t, err)
	assert.NotEqual(t, base, sig)

	changed = testAttestation()
	changed.Nonce = big.NewInt(43)
	sig, err = s.Sign(context.Background(), changed)
	require.NoError(t, err)
	assert.NotEqual(t, base, sig)
}

func TestSignCommitsToDomain(t *testing.T) {
	a, err := NewLocalSigner(testKey, 31337, testContract)
	require.NoError(t, err)
	b, err := NewLocalSigner(testKey, 1, testContract)
	require.NoError(t, err)

	sigA, err := a.Sign(context.Background(), testAttestation())
	require.NoError(t, err)
	sigB, err := b.Sign(context.Background(), testAttestation())
	require.NoError(t, err)

	assert.NotEqual(t, sigA, sigB)
}
