package swap

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vntlabs/vnt-swap-backend/internal/ethereum"
	"github.com/vntlabs/vnt-swap-backend/internal/wallet"
)

// mockLedger implements Ledger in-memory. The default contract sells VNT
// 1:1 for USDT with both tokens at 18 decimals and a 100 VNT floor.
type mockLedger struct {
	mu sync.Mutex

	minSell   *big.Int
	price     *big.Int
	liquidity *big.Int
	allowance *big.Int
	balance   *big.Int

	quoteErr     error
	allowanceErr error
	approveErr   error
	sellErr      error

	// quoteGate, when set, blocks the next Quote call until closed. Used to
	// force a slow response to race against a newer request. allowanceGate
	// does the same for the next Allowance call.
	quoteGate     chan struct{}
	allowanceGate chan struct{}

	minSellCalls   int
	priceCalls     int
	liquidityCalls int
	quoteCalls     int
	allowanceCalls int
	approveCalls   int
	sellCalls      int
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		minSell:   vnt(100),
		price:     big.NewInt(1e18),
		liquidity: vnt(1_000_000),
		allowance: big.NewInt(0),
		balance:   vnt(10_000),
	}
}

// vnt converts a whole number of tokens to 18-decimal base units.
func vnt(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func (m *mockLedger) MinSell(context.Context) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minSellCalls++
	return new(big.Int).Set(m.minSell), nil
}

func (m *mockLedger) PricePerVNT(context.Context) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceCalls++
	return new(big.Int).Set(m.price), nil
}

func (m *mockLedger) Quote(_ context.Context, vntAmount *big.Int) (*big.Int, error) {
	m.mu.Lock()
	m.quoteCalls++
	gate := m.quoteGate
	m.quoteGate = nil
	err := m.quoteErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(vntAmount), nil
}

func (m *mockLedger) Liquidity(context.Context) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liquidityCalls++
	return new(big.Int).Set(m.liquidity), nil
}

func (m *mockLedger) VNTBalance(context.Context, common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balance), nil
}

func (m *mockLedger) Allowance(context.Context, common.Address) (*big.Int, error) {
	m.mu.Lock()
	m.allowanceCalls++
	gate := m.allowanceGate
	m.allowanceGate = nil
	err := m.allowanceErr
	allowance := new(big.Int).Set(m.allowance)
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return allowance, nil
}

func (m *mockLedger) Approve(_ context.Context, _ common.Address, vntAmount *big.Int) (*ethereum.TxResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approveCalls++
	if m.approveErr != nil {
		return nil, m.approveErr
	}
	m.allowance = new(big.Int).Set(vntAmount)
	return &ethereum.TxResult{Hash: "0xapprove", ExplorerURL: "https://testnet.bscscan.com/tx/0xapprove", GasUsed: 46000}, nil
}

func (m *mockLedger) Sell(_ context.Context, _ common.Address, _ *big.Int) (*ethereum.TxResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sellCalls++
	if m.sellErr != nil {
		return nil, m.sellErr
	}
	return &ethereum.TxResult{Hash: "0xsell", ExplorerURL: "https://testnet.bscscan.com/tx/0xsell", GasUsed: 92000}, nil
}

func (m *mockLedger) VNTDecimals() int  { return 18 }
func (m *mockLedger) USDTDecimals() int { return 18 }

func (m *mockLedger) counts() (quote, allowance, price int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quoteCalls, m.allowanceCalls, m.priceCalls
}

// fakePresenter records every display update for assertions.
type fakePresenter struct {
	mu             sync.Mutex
	quoteShown     string
	quoteVisible   bool
	approveEnabled bool
	sellEnabled    bool
	messages       []string
	kinds          []MessageKind
	marketShown    int
}

func (p *fakePresenter) ShowQuote(usdtDisplay string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quoteShown = usdtDisplay
	p.quoteVisible = true
}

func (p *fakePresenter) HideQuote() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quoteVisible = false
}

func (p *fakePresenter) SetControls(approveEnabled, sellEnabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approveEnabled = approveEnabled
	p.sellEnabled = sellEnabled
}

func (p *fakePresenter) ShowMarket(_, _, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marketShown++
}

func (p *fakePresenter) ShowMessage(kind MessageKind, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, kind)
	p.messages = append(p.messages, text)
}

func (p *fakePresenter) lastMessage() (MessageKind, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		return "", ""
	}
	return p.kinds[len(p.kinds)-1], p.messages[len(p.messages)-1]
}

// stubProvider is a wallet provider with one account that always consents.
type stubProvider struct {
	addr   common.Address
	events chan wallet.Event
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		addr:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		events: make(chan wallet.Event),
	}
}

func (p *stubProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{p.addr}, nil
}

func (p *stubProvider) RequestChainSwitch(context.Context, *big.Int) error { return nil }

func (p *stubProvider) SignTx(tx *types.Transaction, _ *big.Int) (*types.Transaction, error) {
	return tx, nil
}

func (p *stubProvider) Events() <-chan wallet.Event { return p.events }
