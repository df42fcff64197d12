package swap

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Market caches the ledger-derived display values: price per VNT, available
// USDT liquidity and the minimum sale floor. The floor is refreshed on an
// interval rather than fetched once per page load, so validation never runs
// against a value the contract abandoned hours ago.
type Market struct {
	mu        sync.RWMutex
	minSell   *big.Int
	price     *big.Int
	liquidity *big.Int
	updatedAt time.Time
}

// Snapshot is a point-in-time copy of the market state.
type Snapshot struct {
	MinSell   *big.Int
	Price     *big.Int
	Liquidity *big.Int
	UpdatedAt time.Time
}

func NewMarket() *Market {
	return &Market{}
}

// MinSell returns the cached floor, or nil before the first refresh.
func (m *Market) MinSell() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.minSell == nil {
		return nil
	}
	return new(big.Int).Set(m.minSell)
}

func (m *Market) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{UpdatedAt: m.updatedAt}
	if m.minSell != nil {
		s.MinSell = new(big.Int).Set(m.minSell)
	}
	if m.price != nil {
		s.Price = new(big.Int).Set(m.price)
	}
	if m.liquidity != nil {
		s.Liquidity = new(big.Int).Set(m.liquidity)
	}
	return s
}

// Refresh re-reads price, liquidity and the minimum-sale floor from the
// ledger and swaps the cache atomically. Reports whether the floor changed.
func (m *Market) Refresh(ctx context.Context, ledger Ledger) (minSellChanged bool, err error) {
	minSell, err := ledger.MinSell(ctx)
	if err != nil {
		return false, &ReadFailure{Op: "minSell", Err: err}
	}
	price, err := ledger.PricePerVNT(ctx)
	if err != nil {
		return false, &ReadFailure{Op: "price", Err: err}
	}
	liquidity, err := ledger.Liquidity(ctx)
	if err != nil {
		return false, &ReadFailure{Op: "liquidity", Err: err}
	}

	m.mu.Lock()
	minSellChanged = m.minSell != nil && m.minSell.Cmp(minSell) != 0
	m.minSell = minSell
	m.price = price
	m.liquidity = liquidity
	m.updatedAt = time.Now()
	m.mu.Unlock()

	if minSellChanged {
		fmt.Printf("[MARKET] Minimum sale changed to %s base units\n", minSell)
	}
	return minSellChanged, nil
}
