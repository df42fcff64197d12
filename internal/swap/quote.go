package swap

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vntlabs/vnt-swap-backend/internal/units"
)

// State is where the quote flow currently stands for a given input.
type State int

const (
	// StateIdle: no valid amount entered; quote hidden.
	StateIdle State = iota
	// StateBelowMinimum: amount parses but is under the floor; no ledger call.
	StateBelowMinimum
	// StateQuoting: a ledger read is in flight.
	StateQuoting
	// StateQuoted: quote received and displayed.
	StateQuoted
	// StateQuoteFailed: the read errored; quote hidden, not retried.
	StateQuoteFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBelowMinimum:
		return "below_minimum"
	case StateQuoting:
		return "quoting"
	case StateQuoted:
		return "quoted"
	case StateQuoteFailed:
		return "quote_failed"
	}
	return "unknown"
}

// QuoteResult is the outcome of one quote request. A Quote is valid only at
// the moment it was fetched; nothing here is cached between inputs.
type QuoteResult struct {
	State       State
	AmountVNT   *big.Int // requested sale, base units
	AmountUSDT  *big.Int // contract's output, base units
	USDTDisplay string
	MinSell     *big.Int
	Approved    bool // Gate result, resolved only when State == StateQuoted
	Stale       bool // a newer request superseded this one; discard
	Err         error
}

// Engine runs the quote state machine. Rapid successive requests race
// against a latency-variable RPC node, so every request takes a
// monotonically increasing sequence token and any response that is no
// longer the latest is marked stale and must not overwrite newer output.
type Engine struct {
	ledger Ledger
	market *Market
	gate   *Gate
	seq    atomic.Uint64
}

func NewEngine(ledger Ledger, market *Market, gate *Gate) *Engine {
	return &Engine{ledger: ledger, market: market, gate: gate}
}

// Request quotes the given human-readable VNT amount for owner. It never
// returns a non-nil error alongside a usable state: failures are folded
// into StateQuoteFailed with Err set for logging.
func (e *Engine) Request(ctx context.Context, owner common.Address, input string) *QuoteResult {
	token := e.seq.Add(1)

	minSell := e.market.MinSell()
	res := &QuoteResult{State: StateIdle, MinSell: minSell}

	amount, err := units.ToBaseUnits(input, e.ledger.VNTDecimals())
	if err != nil {
		// Malformed input is not an error condition for quoting; the quote
		// simply hides.
		return res
	}
	res.AmountVNT = amount

	if minSell == nil || amount.Cmp(minSell) < 0 {
		res.State = StateBelowMinimum
		return res
	}

	res.State = StateQuoting
	usdtOut, err := e.ledger.Quote(ctx, amount)
	if e.seq.Load() != token {
		res.Stale = true
		return res
	}
	if err != nil {
		res.State = StateQuoteFailed
		res.Err = &ReadFailure{Op: "quote", Err: err}
		fmt.Printf("[SWAP] %v\n", res.Err)
		return res
	}

	res.State = StateQuoted
	res.AmountUSDT = usdtOut
	res.USDTDisplay = units.ToHumanUnits(usdtOut, e.ledger.USDTDecimals())

	// A fresh quote always re-resolves the approval affordances. The gate
	// does its own ledger read, so the request can be superseded here too.
	res.Approved = e.gate.Approved(ctx, owner, amount)
	if e.seq.Load() != token {
		res.Stale = true
	}
	return res
}

// Render pushes a quote result to the presenter: quoted amounts are shown
// with approval-driven controls, everything else hides the quote.
func Render(p Presenter, res *QuoteResult) {
	if res.Stale {
		return
	}
	if res.State != StateQuoted {
		p.HideQuote()
		return
	}
	p.ShowQuote(res.USDTDisplay)
	p.SetControls(!res.Approved, res.Approved)
}
