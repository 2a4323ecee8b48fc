// Package chain binds the journal registry contract.
package chain

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
)

const (
	methodCreate       = "createJournalEntry"
	methodTotal        = "getTotalEntries"
	methodCanMint      = "canMintToday"
	methodAllEntries   = "getAllEntries"
	methodTokenURI     = "tokenURI"
	defaultWaitTimeout = 2 * time.Minute
)

//go:embed registry.abi.json
var registryABI string

// RegistryABI returns the registry ABI as JSON.
func RegistryABI() string { return registryABI }

// ParsedABI returns the parsed registry ABI.
func ParsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(registryABI))
}

// Backend is the node connection the gateway needs: contract calls, transactions and receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Gateway exposes typed registry reads and the single registry write.
type Gateway struct {
	address     common.Address
	backend     Backend
	contract    *bind.BoundContract
	waitMined   func(ctx context.Context, b bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error)
	waitTimeout time.Duration
	logger      logger.Logger
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithWaitTimeout bounds how long CreateJournalEntry waits for a receipt.
func WithWaitTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.waitTimeout = d
		}
	}
}

// Dial connects to rpcURL.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc %s: %w", rpcURL, err)
	}
	return client, nil
}

// New binds the registry at address.
func New(address string, backend Backend, log logger.Logger, opts ...Option) (*Gateway, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid registry address %q", address)
	}

	parsed, err := ParsedABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry abi: %w", err)
	}

	addr := common.HexToAddress(address)
	g := &Gateway{
		address:     addr,
		backend:     backend,
		contract:    bind.NewBoundContract(addr, parsed, backend, backend, backend),
		waitMined:   bind.WaitMined,
		waitTimeout: defaultWaitTimeout,
		logger:      log.With(logger.Component("chain")),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Address returns the registry address.
func (g *Gateway) Address() common.Address { return g.address }

func (g *Gateway) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...)
	metrics.ChainCalls.WithLabelValues(method, metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrChainRead, method, err)
	}
	return out, nil
}

// TotalEntries returns the registry's entry counter.
func (g *Gateway) TotalEntries(ctx context.Context) (uint64, error) {
	out, err := g.call(ctx, methodTotal)
	if err != nil {
		return 0, err
	}
	total := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	return toUint64(methodTotal, total)
}

// CanMintToday reports whether user may register an entry today.
func (g *Gateway) CanMintToday(ctx context.Context, user common.Address) (bool, error) {
	out, err := g.call(ctx, methodCanMint, user)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// AllEntries returns every record's token id and minter. TokenURI is left empty.
func (g *Gateway) AllEntries(ctx context.Context) ([]domain.Record, error) {
	out, err := g.call(ctx, methodAllEntries)
	if err != nil {
		return nil, err
	}

	ids := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	minters := *abi.ConvertType(out[1], new([]common.Address)).(*[]common.Address)
	if len(ids) != len(minters) {
		return nil, fmt.Errorf("%w: %s returned %d ids and %d minters",
			domain.ErrChainRead, methodAllEntries, len(ids), len(minters))
	}

	records := make([]domain.Record, len(ids))
	for i := range ids {
		id, err := toUint64(methodAllEntries, ids[i])
		if err != nil {
			return nil, err
		}
		records[i] = domain.Record{TokenID: id, Minter: minters[i].Hex()}
	}
	return records, nil
}

// TokenURI returns the content address registered for tokenID.
func (g *Gateway) TokenURI(ctx context.Context, tokenID uint64) (domain.ContentAddress, error) {
	out, err := g.call(ctx, methodTokenURI, new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", err
	}
	return domain.ContentAddress(*abi.ConvertType(out[0], new(string)).(*string)), nil
}

// HeadBlock returns the latest block number; used for readiness.
func (g *Gateway) HeadBlock(ctx context.Context) (uint64, error) {
	header, err := g.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: head: %w", domain.ErrChainRead, err)
	}
	return header.Number.Uint64(), nil
}

// CreateJournalEntry submits uri from session and waits for the receipt.
// It never resubmits: every failure is terminal for this attempt.
func (g *Gateway) CreateJournalEntry(ctx context.Context, session WalletSession, uri domain.ContentAddress) (domain.MintResult, error) {
	if !session.CanSign() {
		return domain.MintResult{}, domain.ErrNotConnected
	}

	opts := *session.signer
	opts.Context = ctx

	tx, err := g.contract.Transact(&opts, methodCreate, string(uri))
	if err != nil {
		metrics.Mints.WithLabelValues("rejected").Inc()
		return domain.MintResult{}, &domain.MintError{Kind: domain.ErrMintRejected, Err: err}
	}

	txHash := tx.Hash().Hex()
	g.logger.Info("registration submitted",
		logger.String("tx", txHash),
		logger.String("from", session.Address.Hex()),
		logger.String("uri", string(uri)))

	waitCtx, cancel := context.WithTimeout(ctx, g.waitTimeout)
	defer cancel()

	receipt, err := g.waitMined(waitCtx, g.backend, tx)
	if err != nil {
		metrics.Mints.WithLabelValues("unconfirmed").Inc()
		return domain.MintResult{}, &domain.MintError{
			Kind:      domain.ErrMintFailed,
			Submitted: true,
			TxHash:    txHash,
			Err:       fmt.Errorf("awaiting confirmation: %w", err),
		}
	}

	if err := checkReceipt(receipt); err != nil {
		metrics.Mints.WithLabelValues("failed").Inc()
		g.logger.Warn("registration reverted",
			logger.String("tx", txHash),
			logger.Uint64("block", blockNumber(receipt)))
		return domain.MintResult{}, &domain.MintError{
			Kind:      domain.ErrMintFailed,
			Submitted: true,
			TxHash:    txHash,
			Err:       err,
		}
	}

	metrics.Mints.WithLabelValues("confirmed").Inc()
	g.logger.Info("registration confirmed",
		logger.String("tx", txHash),
		logger.Uint64("block", blockNumber(receipt)))

	return domain.MintResult{
		TxHash:      txHash,
		BlockNumber: blockNumber(receipt),
		TokenURI:    uri,
	}, nil
}

var errReceiptFailed = errors.New("receipt reports failure")

// checkReceipt treats inclusion without success as failure.
func checkReceipt(r *types.Receipt) error {
	if r == nil {
		return errors.New("missing receipt")
	}
	if r.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: status %d", errReceiptFailed, r.Status)
	}
	return nil
}

func blockNumber(r *types.Receipt) uint64 {
	if r == nil || r.BlockNumber == nil {
		return 0
	}
	return r.BlockNumber.Uint64()
}

func toUint64(method string, v *big.Int) (uint64, error) {
	if v == nil || !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s returned out-of-range integer %v", domain.ErrChainRead, method, v)
	}
	return v.Uint64(), nil
}
