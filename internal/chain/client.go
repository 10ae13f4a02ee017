package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"subsidyledger/pkg/config"
)

// IDHash maps a ledger identifier to its on-chain bytes32 form.
func IDHash(id string) common.Hash {
	return crypto.Keccak256Hash([]byte(id))
}

// MilestoneHash is the on-chain id of a (program, key) milestone.
func MilestoneHash(programID, key string) common.Hash {
	return IDHash(programID + ":" + key)
}

// Client wraps the JSON-RPC provider and the subsidy contract. Government
// operations go through the gov wallet, attestations through the auditor
// wallet. Every call takes a bounded context; nothing here blocks an HTTP
// handler (the poller owns confirmation waits).
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	address  common.Address

	govOpts     *bind.TransactOpts
	auditorOpts *bind.TransactOpts

	submitTimeout  time.Duration
	confirmTimeout time.Duration

	logger *zap.Logger
}

func NewClient(cfg config.ChainConfig, logger *zap.Logger) (*Client, error) {
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("contract address not configured")
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(subsidyABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(address, parsed, eth, eth, eth)

	chainID := big.NewInt(cfg.ChainID)

	govOpts, err := transactorFor(cfg.GovKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("invalid gov key: %w", err)
	}
	auditorOpts, err := transactorFor(cfg.AuditorKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("invalid auditor key: %w", err)
	}

	submitTimeout := time.Duration(cfg.SubmitTimeout) * time.Second
	if submitTimeout == 0 {
		submitTimeout = 15 * time.Second
	}
	confirmTimeout := time.Duration(cfg.ConfirmTimeout) * time.Second
	if confirmTimeout == 0 {
		confirmTimeout = 90 * time.Second
	}

	logger.Info("Chain client initialized",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("contract", address.Hex()),
	)

	return &Client{
		eth:            eth,
		contract:       contract,
		address:        address,
		govOpts:        govOpts,
		auditorOpts:    auditorOpts,
		submitTimeout:  submitTimeout,
		confirmTimeout: confirmTimeout,
		logger:         logger,
	}, nil
}

func transactorFor(hexKey string, chainID *big.Int) (*bind.TransactOpts, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, err
	}
	return bind.NewKeyedTransactorWithChainID(key, chainID)
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) ContractAddress() common.Address {
	return c.address
}

// withCtx copies a cached transactor so concurrent submits don't share a
// mutable Context field.
func withCtx(ctx context.Context, base *bind.TransactOpts) *bind.TransactOpts {
	opts := *base
	opts.Context = ctx
	return &opts
}

func (c *Client) submit(ctx context.Context, opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	submitCtx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	tx, err := c.contract.Transact(withCtx(submitCtx, opts), method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s: %w", method, err)
	}

	c.logger.Info("Transaction submitted",
		zap.String("method", method),
		zap.String("tx_hash", tx.Hash().Hex()),
	)
	return tx, nil
}

func (c *Client) CreateProgram(ctx context.Context, programID string, ratePerKwh int64) (*types.Transaction, error) {
	return c.submit(ctx, c.govOpts, "createProgram", IDHash(programID), big.NewInt(ratePerKwh))
}

func (c *Client) ApproveProject(ctx context.Context, projectID string) (*types.Transaction, error) {
	return c.submit(ctx, c.govOpts, "approveProject", IDHash(projectID))
}

func (c *Client) DefineMilestone(ctx context.Context, milestoneID common.Hash, amount int64) (*types.Transaction, error) {
	return c.submit(ctx, c.govOpts, "defineMilestone", milestoneID, big.NewInt(amount))
}

func (c *Client) AttestMilestone(ctx context.Context, milestoneID common.Hash, value int64, dataHash common.Hash, deadline, nonce int64, signature []byte) (*types.Transaction, error) {
	return c.submit(ctx, c.auditorOpts, "attestMilestone",
		milestoneID,
		big.NewInt(value),
		dataHash,
		big.NewInt(deadline),
		big.NewInt(nonce),
		signature,
	)
}

func (c *Client) ReleasePayment(ctx context.Context, projectID string, milestoneID common.Hash) (*types.Transaction, error) {
	return c.submit(ctx, c.govOpts, "releasePayment", IDHash(projectID), milestoneID)
}

// WaitMined blocks until the transaction is mined or the confirm timeout
// elapses. Returns an error for reverted transactions.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return c.WaitMinedHash(ctx, tx.Hash())
}

// WaitMinedHash waits on a transaction known only by hash, so a caller
// that persisted the hash can resume waiting after a crash without holding
// the *types.Transaction.
func (c *Client) WaitMinedHash(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	confirmCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(confirmCtx, txHash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("execution reverted: tx %s", txHash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Debug("Receipt lookup failed, retrying",
				zap.String("tx_hash", txHash.Hex()),
				zap.Error(err),
			)
		}

		select {
		case <-confirmCtx.Done():
			return nil, fmt.Errorf("failed waiting for tx %s: %w", txHash.Hex(), confirmCtx.Err())
		case <-ticker.C:
		}
	}
}
