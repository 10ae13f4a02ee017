package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Attestation is the typed-data struct an auditor signs. The signature
// commits to these fields under the contract's EIP-712 domain.
type Attestation struct {
	MilestoneID common.Hash
	Value       *big.Int
	DataHash    common.Hash
	Deadline    *big.Int
	Nonce       *big.Int
}

// Signer produces EIP-712 signatures over milestone attestations. Call sites
// depend on the interface only, so key material can later move behind an
// HSM/KMS implementation.
type Signer interface {
	Sign(ctx context.Context, att *Attestation) ([]byte, error)
	Address() common.Address
}

const (
	domainName    = "HydrogenSubsidy"
	domainVersion = "1"
	primaryType   = "MilestoneAttestation"
)

var attestationTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	primaryType: {
		{Name: "milestoneId", Type: "bytes32"},
		{Name: "value", Type: "uint256"},
		{Name: "dataHash", Type: "bytes32"},
		{Name: "deadline", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
	},
}

// LocalSigner signs with an in-process private key.
type LocalSigner struct {
	key    *ecdsa.PrivateKey
	domain apitypes.TypedDataDomain
}

func NewLocalSigner(hexKey string, chainID int64, verifyingContract common.Address) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(trim0x(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}

	return &LocalSigner{
		key: key,
		domain: apitypes.TypedDataDomain{
			Name:              domainName,
			Version:           domainVersion,
			ChainId:           math.NewHexOrDecimal256(chainID),
			VerifyingContract: verifyingContract.Hex(),
		},
	}, nil
}

func (s *LocalSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// Sign hashes the typed data and returns a 65-byte r||s||v signature with
// v in {27, 28}.
func (s *LocalSigner) Sign(ctx context.Context, att *Attestation) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       attestationTypes,
		PrimaryType: primaryType,
		Domain:      s.domain,
		Message: apitypes.TypedDataMessage{
			"milestoneId": hexutil.Encode(att.MilestoneID[:]),
			"value":       (*math.HexOrDecimal256)(att.Value),
			"dataHash":    hexutil.Encode(att.DataHash[:]),
			"deadline":    (*math.HexOrDecimal256)(att.Deadline),
			"nonce":       (*math.HexOrDecimal256)(att.Nonce),
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign attestation: %w", err)
	}

	// crypto.Sign returns v in {0, 1}; contracts expect {27, 28}
	sig[64] += 27
	return sig, nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
