package swap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Gate decides whether a requested sale is already covered by the seller's
// allowance. It exists purely to drive the Approve/Sell affordances; the
// contract enforces the real rule on-chain.
type Gate struct {
	ledger Ledger
	market *Market
}

func NewGate(ledger Ledger, market *Market) *Gate {
	return &Gate{ledger: ledger, market: market}
}

// Approved reports whether the current allowance covers amount. Fails
// closed: any lookup error, nil amount or sub-minimum amount yields false,
// so downstream gating always lands on the safe, sell-disabled default.
func (g *Gate) Approved(ctx context.Context, owner common.Address, amount *big.Int) bool {
	if amount == nil || amount.Sign() <= 0 {
		return false
	}

	// Below the floor there is nothing to approve; skip the round trip.
	if minSell := g.market.MinSell(); minSell != nil && amount.Cmp(minSell) < 0 {
		return false
	}

	allowance, err := g.ledger.Allowance(ctx, owner)
	if err != nil {
		fmt.Printf("[SWAP] Allowance check failed (treating as not approved): %v\n", err)
		return false
	}
	return allowance.Cmp(amount) >= 0
}
