// Package chaintest provides an in-memory journal registry that speaks the contract ABI.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Address is where the fake registry is deployed.
const Address = "0x00000000000000000000000000000000000a11ce"

// Registry implements bind.ContractBackend and bind.DeployBackend over an in-memory registry.
// It enforces one successful registration per minter until NewDay is called.
type Registry struct {
	mu       sync.Mutex
	abi      abi.ABI
	signer   types.Signer
	ids      []*big.Int
	minters  []common.Address
	uris     map[uint64]string
	minted   map[common.Address]bool
	receipts map[common.Hash]*types.Receipt
	block    int64

	failures    map[string]error
	sendErr     error
	revertMints bool
	calls       map[string]int
	sent        int
}

// NewRegistry builds an empty registry for chainID. abiJSON is the registry ABI.
func NewRegistry(abiJSON string, chainID *big.Int) (*Registry, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, err
	}
	return &Registry{
		abi:      parsed,
		signer:   types.LatestSignerForChainID(chainID),
		uris:     map[uint64]string{},
		minted:   map[common.Address]bool{},
		receipts: map[common.Hash]*types.Receipt{},
		failures: map[string]error{},
		calls:    map[string]int{},
		block:    100,
	}, nil
}

// NewTransactor returns a keyed transactor with a fresh key for chainID.
func NewTransactor(chainID *big.Int) (*bind.TransactOpts, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return bind.NewKeyedTransactorWithChainID(key, chainID)
}

// AddEntry appends a record as if minter had registered uri. It returns the token id.
func (r *Registry) AddEntry(minter common.Address, uri string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(minter, uri)
}

func (r *Registry) addLocked(minter common.Address, uri string) uint64 {
	id := uint64(len(r.ids) + 1)
	r.ids = append(r.ids, new(big.Int).SetUint64(id))
	r.minters = append(r.minters, minter)
	r.uris[id] = uri
	return id
}

// FailMethod makes calls to method return err. A nil err clears the failure.
func (r *Registry) FailMethod(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	r.failures[method] = err
}

// RejectSends makes SendTransaction fail with err.
func (r *Registry) RejectSends(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendErr = err
}

// RevertMints makes every following registration mine with a failed receipt.
func (r *Registry) RevertMints(revert bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revertMints = revert
}

// NewDay resets the per-minter daily limit.
func (r *Registry) NewDay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minted = map[common.Address]bool{}
}

// Calls returns how many times method was called.
func (r *Registry) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// Sent returns how many transactions reached the registry.
func (r *Registry) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

// CallContract executes a read against the registry.
func (r *Registry) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(call.Data) < 4 {
		return nil, errors.New("short call data")
	}
	method, err := r.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	r.calls[method.Name]++
	if err := r.failures[method.Name]; err != nil {
		return nil, err
	}

	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "getTotalEntries":
		return method.Outputs.Pack(big.NewInt(int64(len(r.ids))))
	case "canMintToday":
		return method.Outputs.Pack(!r.minted[args[0].(common.Address)])
	case "getAllEntries":
		return method.Outputs.Pack(r.ids, r.minters)
	case "tokenURI":
		id := args[0].(*big.Int).Uint64()
		uri, ok := r.uris[id]
		if !ok {
			return nil, fmt.Errorf("execution reverted: nonexistent token %d", id)
		}
		return method.Outputs.Pack(uri)
	default:
		return nil, fmt.Errorf("unexpected call to %s", method.Name)
	}
}

// SendTransaction mines tx immediately.
func (r *Registry) SendTransaction(_ context.Context, tx *types.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sendErr != nil {
		return r.sendErr
	}
	data := tx.Data()
	if len(data) < 4 {
		return errors.New("short tx data")
	}
	method, err := r.abi.MethodById(data[:4])
	if err != nil {
		return err
	}
	if method.Name != "createJournalEntry" {
		return fmt.Errorf("unexpected transaction to %s", method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return err
	}
	from, err := types.Sender(r.signer, tx)
	if err != nil {
		return err
	}

	r.sent++
	r.block++
	status := types.ReceiptStatusSuccessful
	if r.revertMints || r.minted[from] {
		status = types.ReceiptStatusFailed
	} else {
		r.addLocked(from, args[0].(string))
		r.minted[from] = true
	}

	r.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(r.block),
	}
	return nil
}

// TransactionReceipt returns the receipt of a sent transaction.
func (r *Registry) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	receipt, ok := r.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (r *Registry) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (r *Registry) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (r *Registry) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint64(r.sent), nil
}

func (r *Registry) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &types.Header{Number: big.NewInt(r.block), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (r *Registry) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (r *Registry) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (r *Registry) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 150_000, nil
}

func (r *Registry) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (r *Registry) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions not supported")
}
