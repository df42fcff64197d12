package scheduler

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vntlabs/vnt-swap-backend/internal/ethereum"
	"github.com/vntlabs/vnt-swap-backend/internal/swap"
)

type tickLedger struct {
	mu      sync.Mutex
	minSell *big.Int
	price   *big.Int
}

func (l *tickLedger) setMinSell(v *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minSell = v
}

func (l *tickLedger) MinSell(context.Context) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.minSell), nil
}

func (l *tickLedger) PricePerVNT(context.Context) (*big.Int, error) {
	return new(big.Int).Set(l.price), nil
}

func (l *tickLedger) Quote(_ context.Context, _ *big.Int) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (l *tickLedger) Liquidity(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}

func (l *tickLedger) VNTBalance(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (l *tickLedger) Allowance(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (l *tickLedger) Approve(context.Context, common.Address, *big.Int) (*ethereum.TxResult, error) {
	return nil, nil
}

func (l *tickLedger) Sell(context.Context, common.Address, *big.Int) (*ethereum.TxResult, error) {
	return nil, nil
}

func (l *tickLedger) VNTDecimals() int  { return 18 }
func (l *tickLedger) USDTDecimals() int { return 18 }

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *captureNotifier) Send(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *captureNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func TestMarketWatcher_RefreshesCache(t *testing.T) {
	ledger := &tickLedger{minSell: big.NewInt(100), price: big.NewInt(42)}
	market := swap.NewMarket()

	w := NewMarketWatcher(ledger, market, nil, nil, 5*time.Millisecond)
	w.Start()
	defer w.Stop()

	deadline := time.After(time.Second)
	for {
		if s := market.Snapshot(); s.MinSell != nil {
			if s.MinSell.Cmp(big.NewInt(100)) != 0 {
				t.Fatalf("cached min sell = %s, want 100", s.MinSell)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("market cache never populated")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestMarketWatcher_NotifiesOnFloorChange(t *testing.T) {
	ledger := &tickLedger{minSell: big.NewInt(100), price: big.NewInt(42)}
	market := swap.NewMarket()
	notifier := &captureNotifier{}

	// Seed the cache so the first tick is not itself a change.
	if _, err := market.Refresh(context.Background(), ledger); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	w := NewMarketWatcher(ledger, market, nil, notifier, 5*time.Millisecond)
	w.Start()
	defer w.Stop()

	ledger.setMinSell(big.NewInt(200))

	deadline := time.After(time.Second)
	for {
		if msgs := notifier.messages(); len(msgs) > 0 {
			if !strings.HasPrefix(msgs[0], "Minimum sale changed to ") {
				t.Fatalf("unexpected notification %q", msgs[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("floor change never announced")
		case <-time.After(time.Millisecond):
		}
	}
}
