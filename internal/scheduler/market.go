package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/vntlabs/vnt-swap-backend/internal/repository"
	"github.com/vntlabs/vnt-swap-backend/internal/swap"
	"github.com/vntlabs/vnt-swap-backend/internal/units"
)

// MarketWatcher periodically re-reads the contract's price, liquidity and
// minimum-sale floor, keeps the shared market cache fresh and records a
// snapshot per tick. A change to the floor is announced, since open quotes
// validated against the old floor may no longer clear it.
type MarketWatcher struct {
	ledger    swap.Ledger
	market    *swap.Market
	priceRepo *repository.PriceRepo // optional
	notify    swap.Notifier         // optional
	interval  time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewMarketWatcher(ledger swap.Ledger, market *swap.Market, priceRepo *repository.PriceRepo, notify swap.Notifier, interval time.Duration) *MarketWatcher {
	return &MarketWatcher{
		ledger:    ledger,
		market:    market,
		priceRepo: priceRepo,
		notify:    notify,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (w *MarketWatcher) Start() {
	fmt.Printf("[WATCH] Market watcher started (every %s)\n", w.interval)
	go w.run()
}

func (w *MarketWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	fmt.Println("[WATCH] Market watcher stopped")
}

func (w *MarketWatcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *MarketWatcher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	changed, err := w.market.Refresh(ctx, w.ledger)
	if err != nil {
		fmt.Printf("[WATCH] Refresh failed: %v\n", err)
		return
	}

	s := w.market.Snapshot()

	if changed && w.notify != nil {
		w.notify.Send(fmt.Sprintf("Minimum sale changed to %s VNT",
			units.ToHumanUnits(s.MinSell, w.ledger.VNTDecimals())))
	}

	if w.priceRepo != nil {
		_, err := w.priceRepo.Record(ctx, s.Price.String(), s.Liquidity.String(), s.MinSell.String(), s.UpdatedAt)
		if err != nil {
			fmt.Printf("[WATCH] Failed to record snapshot: %v\n", err)
		}
	}
}
