package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// WalletSession is the signing identity the service acts as.
// A zero WalletSession is disconnected and can only read.
type WalletSession struct {
	Address   common.Address
	Connected bool
	signer    *bind.TransactOpts
}

// Disconnected returns a read-only session.
func Disconnected() WalletSession { return WalletSession{} }

// NewWalletSession derives the session from a hex private key. An empty key yields a disconnected session.
func NewWalletSession(privateKeyHex string, chainID *big.Int) (WalletSession, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return Disconnected(), nil
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return WalletSession{}, fmt.Errorf("invalid private key: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return WalletSession{}, fmt.Errorf("failed to build transactor: %w", err)
	}

	return SessionFromTransactor(opts), nil
}

// SessionFromTransactor wraps an existing transactor.
func SessionFromTransactor(opts *bind.TransactOpts) WalletSession {
	if opts == nil {
		return Disconnected()
	}
	return WalletSession{Address: opts.From, Connected: true, signer: opts}
}

// CanSign reports whether the session can submit transactions.
func (s WalletSession) CanSign() bool { return s.Connected && s.signer != nil }

// Hex returns the checksummed address, or "" when disconnected.
func (s WalletSession) Hex() string {
	if !s.Connected {
		return ""
	}
	return s.Address.Hex()
}

// SameIdentity reports whether two sessions represent the same connected wallet.
func (s WalletSession) SameIdentity(other WalletSession) bool {
	return s.Connected == other.Connected && s.Address == other.Address
}
