package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Session is the client's transient binding to a connected account on a
// specific chain. It is created on connect and invalidated — never mutated —
// when the account or chain changes.
type Session struct {
	Account common.Address
	ChainID *big.Int
}

func (s *Session) ShortAccount() string {
	return ShortenAddress(s.Account)
}

// ShortenAddress renders an address as 0x1234...abcd for display.
func ShortenAddress(a common.Address) string {
	hex := a.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}

// Manager owns the single active session. All session state lives here,
// guarded by a mutex; nothing else in the process caches the account.
type Manager struct {
	provider Provider
	chainID  *big.Int

	mu      sync.Mutex
	current *Session

	// OnInvalidate is called (outside the lock) whenever the session is torn
	// down by a provider event, with a human-readable reason.
	OnInvalidate func(reason string)
}

func NewManager(provider Provider, chainID *big.Int) *Manager {
	return &Manager{provider: provider, chainID: chainID}
}

// Connect requests account access and binds a new session on the configured
// chain. A provider on the wrong chain is asked to switch first.
func (m *Manager) Connect(ctx context.Context) (*Session, error) {
	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("wallet returned no accounts")
	}

	if err := m.provider.RequestChainSwitch(ctx, m.chainID); err != nil {
		return nil, fmt.Errorf("switch chain: %w", err)
	}

	s := &Session{Account: accounts[0], ChainID: new(big.Int).Set(m.chainID)}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	fmt.Printf("[SESSION] Connected %s on chain %s\n", s.ShortAccount(), m.chainID)
	return s, nil
}

// Current returns the active session, or false if no wallet is connected.
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	return m.current, true
}

func (m *Manager) Disconnect() {
	m.invalidate("disconnected")
}

// Watch consumes provider events until the context is cancelled or the
// event channel closes. An account change rebinds the session to the new
// account; a chain change or disconnect invalidates it entirely.
func (m *Manager) Watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-m.provider.Events():
			if !ok {
				return
			}
			m.handle(ev)
		}
	}
}

func (m *Manager) handle(ev Event) {
	switch ev.Kind {
	case EventAccountsChanged:
		if len(ev.Accounts) == 0 {
			m.invalidate("account disconnected")
			return
		}
		m.mu.Lock()
		m.current = &Session{Account: ev.Accounts[0], ChainID: new(big.Int).Set(m.chainID)}
		m.mu.Unlock()
		fmt.Printf("[SESSION] Account changed to %s\n", ShortenAddress(ev.Accounts[0]))
	case EventChainChanged:
		// Mirrors the page-reload recovery: a chain change drops everything
		// and the client must reconnect.
		m.invalidate(fmt.Sprintf("chain changed to %s", ev.ChainID))
	case EventDisconnect:
		m.invalidate("wallet disconnected")
	}
}

func (m *Manager) invalidate(reason string) {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	cb := m.OnInvalidate
	m.mu.Unlock()

	if had {
		fmt.Printf("[SESSION] Invalidated: %s\n", reason)
		if cb != nil {
			cb(reason)
		}
	}
}
