package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrUserDeclined is returned when the signer explicitly rejects a connect
// or signing prompt. Callers surface it as a short, non-alarming message and
// never retry automatically.
var ErrUserDeclined = errors.New("user declined request")

type EventKind int

const (
	EventAccountsChanged EventKind = iota
	EventChainChanged
	EventDisconnect
)

// Event is delivered by a Provider when the wallet's account or chain
// binding changes out from under us.
type Event struct {
	Kind     EventKind
	Accounts []common.Address // populated for EventAccountsChanged
	ChainID  *big.Int         // populated for EventChainChanged
}

// Provider abstracts the wallet: account discovery, chain identity and
// transaction signing. The production implementation holds a local private
// key; tests substitute a declining or scripted provider.
type Provider interface {
	// RequestAccounts prompts for account access and returns the available
	// accounts. Returns ErrUserDeclined if the prompt was rejected.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// RequestChainSwitch asks the wallet to move to the given chain.
	RequestChainSwitch(ctx context.Context, chainID *big.Int) error

	// SignTx signs a transaction for the given chain. Returns
	// ErrUserDeclined if the signing prompt was rejected.
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)

	// Events streams account/chain/disconnect notifications. The channel is
	// closed when the provider shuts down.
	Events() <-chan Event
}

// KeyProvider is a Provider backed by a local private key. It has exactly
// one account, never declines, and emits no events.
type KeyProvider struct {
	key    *ecdsa.PrivateKey
	addr   common.Address
	events chan Event
}

func NewKeyProvider(privateKeyHex string) (*KeyProvider, error) {
	pkHex := strings.TrimPrefix(privateKeyHex, "0x")
	pk, err := crypto.HexToECDSA(pkHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeyProvider{
		key:    pk,
		addr:   crypto.PubkeyToAddress(pk.PublicKey),
		events: make(chan Event),
	}, nil
}

func (p *KeyProvider) RequestAccounts(_ context.Context) ([]common.Address, error) {
	return []common.Address{p.addr}, nil
}

func (p *KeyProvider) RequestChainSwitch(_ context.Context, _ *big.Int) error {
	// A key provider is not bound to any chain; the signer picks the chain
	// at signing time.
	return nil
}

func (p *KeyProvider) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signer := types.NewEIP155Signer(chainID)
	signed, err := types.SignTx(tx, signer, p.key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	return signed, nil
}

func (p *KeyProvider) Events() <-chan Event {
	return p.events
}

func (p *KeyProvider) Close() {
	close(p.events)
}
