package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	addrA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	addrB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

// scriptedProvider drives Manager tests: fixed accounts, optional decline,
// and a controllable event stream.
type scriptedProvider struct {
	accounts []common.Address
	decline  bool
	events   chan Event
}

func newScriptedProvider(accounts ...common.Address) *scriptedProvider {
	return &scriptedProvider{accounts: accounts, events: make(chan Event, 4)}
}

func (p *scriptedProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	if p.decline {
		return nil, ErrUserDeclined
	}
	return p.accounts, nil
}

func (p *scriptedProvider) RequestChainSwitch(context.Context, *big.Int) error { return nil }

func (p *scriptedProvider) SignTx(tx *types.Transaction, _ *big.Int) (*types.Transaction, error) {
	return tx, nil
}

func (p *scriptedProvider) Events() <-chan Event { return p.events }

func TestManager_Connect(t *testing.T) {
	m := NewManager(newScriptedProvider(addrA), big.NewInt(56))

	s, err := m.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if s.Account != addrA {
		t.Fatalf("account %s, want %s", s.Account.Hex(), addrA.Hex())
	}
	if s.ChainID.Int64() != 56 {
		t.Fatalf("chain id %d, want 56", s.ChainID.Int64())
	}

	cur, ok := m.Current()
	if !ok || cur.Account != addrA {
		t.Fatal("Current() does not reflect the connected session")
	}
}

func TestManager_ConnectDeclined(t *testing.T) {
	p := newScriptedProvider(addrA)
	p.decline = true
	m := NewManager(p, big.NewInt(56))

	_, err := m.Connect(context.Background())
	if !errors.Is(err, ErrUserDeclined) {
		t.Fatalf("err %v, want ErrUserDeclined", err)
	}
	if _, ok := m.Current(); ok {
		t.Fatal("declined connect must not leave a session")
	}
}

func TestManager_NoAccounts(t *testing.T) {
	m := NewManager(newScriptedProvider(), big.NewInt(56))
	if _, err := m.Connect(context.Background()); err == nil {
		t.Fatal("expected error for empty account list")
	}
}

func TestManager_AccountChangeRebinds(t *testing.T) {
	p := newScriptedProvider(addrA)
	m := NewManager(p, big.NewInt(56))
	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Watch(ctx)
		close(done)
	}()

	p.events <- Event{Kind: EventAccountsChanged, Accounts: []common.Address{addrB}}

	waitFor(t, func() bool {
		s, ok := m.Current()
		return ok && s.Account == addrB
	}, "session rebinds to the new account")

	cancel()
	<-done
}

func TestManager_ChainChangeInvalidates(t *testing.T) {
	p := newScriptedProvider(addrA)
	m := NewManager(p, big.NewInt(56))

	invalidated := make(chan string, 1)
	m.OnInvalidate = func(reason string) { invalidated <- reason }

	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Watch(ctx)

	p.events <- Event{Kind: EventChainChanged, ChainID: big.NewInt(1)}

	select {
	case reason := <-invalidated:
		t.Logf("invalidated: %s", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("chain change did not invalidate the session")
	}

	if _, ok := m.Current(); ok {
		t.Fatal("session must be nil after a chain change")
	}
}

func TestManager_DisconnectEvent(t *testing.T) {
	p := newScriptedProvider(addrA)
	m := NewManager(p, big.NewInt(56))
	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Watch(ctx)

	p.events <- Event{Kind: EventDisconnect}

	waitFor(t, func() bool {
		_, ok := m.Current()
		return !ok
	}, "session clears on disconnect")
}

func TestShortenAddress(t *testing.T) {
	full := addrA.Hex()
	got := ShortenAddress(addrA)
	if len(got) != 13 {
		t.Fatalf("short form %q has length %d, want 13", got, len(got))
	}
	if got[:6] != full[:6] || got[6:9] != "..." || got[9:] != full[len(full)-4:] {
		t.Fatalf("short form %q does not abbreviate %q", got, full)
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for: %s", what)
		case <-time.After(time.Millisecond):
		}
	}
}
