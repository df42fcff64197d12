package swap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/vntlabs/vnt-swap-backend/internal/ethereum"
	"github.com/vntlabs/vnt-swap-backend/internal/models"
	"github.com/vntlabs/vnt-swap-backend/internal/units"
	"github.com/vntlabs/vnt-swap-backend/internal/wallet"
)

// The contract publishes its price scaled to 18 decimals regardless of
// either token's own decimals.
const priceDecimals = 18

// Recorder persists mined swap transactions. Kept as an interface so the
// orchestrator can be tested without a database.
type Recorder interface {
	Record(ctx context.Context, rec *models.SwapRecord) (*models.SwapRecord, error)
}

// Notifier announces swap outcomes out-of-band (webhook, chat).
type Notifier interface {
	Send(msg string)
}

// Orchestrator drives the two user-invoked flows — approve and sell —
// against the ledger. Neither flow retries on failure; a failed submission
// leaves all state unchanged and waits for explicit re-initiation.
type Orchestrator struct {
	ledger    Ledger
	market    *Market
	gate      *Gate
	sessions  *wallet.Manager
	presenter Presenter
	recorder  Recorder // optional
	notify    Notifier // optional
	network   string
}

func NewOrchestrator(
	ledger Ledger,
	market *Market,
	gate *Gate,
	sessions *wallet.Manager,
	presenter Presenter,
	recorder Recorder,
	notify Notifier,
	network string,
) *Orchestrator {
	return &Orchestrator{
		ledger:    ledger,
		market:    market,
		gate:      gate,
		sessions:  sessions,
		presenter: presenter,
		recorder:  recorder,
		notify:    notify,
		network:   network,
	}
}

// Connect binds a wallet session and shows the seller's VNT balance.
func (o *Orchestrator) Connect(ctx context.Context) (*wallet.Session, error) {
	session, err := o.sessions.Connect(ctx)
	if err != nil {
		if errors.Is(err, wallet.ErrUserDeclined) {
			o.presenter.ShowMessage(MsgError, "User rejected connection request")
			return nil, err
		}
		o.presenter.ShowMessage(MsgError, fmt.Sprintf("Error connecting wallet: %v", err))
		return nil, err
	}

	if balance, err := o.ledger.VNTBalance(ctx, session.Account); err == nil {
		o.presenter.ShowMessage(MsgStatus, fmt.Sprintf("%s holds %s VNT",
			session.ShortAccount(), units.ToHumanUnits(balance, o.ledger.VNTDecimals())))
	}

	o.presenter.ShowMessage(MsgSuccess, "Wallet connected successfully")
	o.presenter.SetControls(true, false)
	return session, nil
}

// Approve submits an approval for exactly the requested amount — never an
// unlimited allowance. On inclusion the affordances flip optimistically
// without re-reading the allowance; the ledger still enforces the real
// rule at sell time, so a stale flip can only ever disappoint, not lose
// funds.
func (o *Orchestrator) Approve(ctx context.Context, input string) (*ethereum.TxResult, error) {
	session, amount, err := o.validate(input)
	if err != nil {
		o.reportValidation(err)
		return nil, err
	}

	o.presenter.ShowMessage(MsgStatus, "Processing transaction...")
	res, err := o.ledger.Approve(ctx, session.Account, amount)
	if err != nil {
		err = classifyWrite("approval", err)
		o.reportWrite(err)
		return nil, err
	}

	o.record(ctx, models.SwapKindApprove, session.Account.Hex(), amount, nil, res)
	o.presenter.ShowMessage(MsgSuccess, "VNT approved successfully!")
	o.presenter.SetControls(false, true)
	return res, nil
}

// Sell submits the sale. On inclusion the market display is refreshed from
// a fresh ledger read (exactly once) and the affordances reset to the
// pre-quote default, forcing a re-quote before the next sale.
func (o *Orchestrator) Sell(ctx context.Context, input string) (*ethereum.TxResult, error) {
	session, amount, err := o.validate(input)
	if err != nil {
		o.reportValidation(err)
		return nil, err
	}

	// Best-effort quote for the record; the contract prices the sale itself.
	var usdtOut *big.Int
	if q, err := o.ledger.Quote(ctx, amount); err == nil {
		usdtOut = q
	}

	o.presenter.ShowMessage(MsgStatus, "Processing transaction...")
	res, err := o.ledger.Sell(ctx, session.Account, amount)
	if err != nil {
		err = classifyWrite("sale", err)
		o.reportWrite(err)
		return nil, err
	}

	o.record(ctx, models.SwapKindSell, session.Account.Hex(), amount, usdtOut, res)
	o.presenter.ShowMessage(MsgSuccess, "VNT sold successfully!")
	if o.notify != nil {
		o.notify.Send(fmt.Sprintf("Sold %s VNT (%s) — %s",
			units.ToHumanUnits(amount, o.ledger.VNTDecimals()), session.ShortAccount(), res.ExplorerURL))
	}

	if err := o.RefreshMarket(ctx); err != nil {
		fmt.Printf("[SWAP] Post-sale market refresh failed: %v\n", err)
	}

	o.presenter.HideQuote()
	o.presenter.SetControls(true, false)
	return res, nil
}

// RefreshMarket re-reads the ledger display data and pushes it to the
// presenter.
func (o *Orchestrator) RefreshMarket(ctx context.Context) error {
	if _, err := o.market.Refresh(ctx, o.ledger); err != nil {
		return err
	}
	s := o.market.Snapshot()
	o.presenter.ShowMarket(
		units.ToHumanUnits(s.Price, priceDecimals),
		units.ToHumanUnits(s.MinSell, o.ledger.VNTDecimals()),
		units.ToHumanUnits(s.Liquidity, o.ledger.USDTDecimals()),
	)
	return nil
}

// validate resolves the session and converts the input, mirroring the
// contract's format and minimum checks so bad requests never reach the
// chain.
func (o *Orchestrator) validate(input string) (*wallet.Session, *big.Int, error) {
	session, ok := o.sessions.Current()
	if !ok {
		return nil, nil, validationErrorf("no wallet connected")
	}

	amount, err := units.ToBaseUnits(input, o.ledger.VNTDecimals())
	if err != nil {
		return nil, nil, validationErrorf("Please enter a valid VNT amount")
	}

	minSell := o.market.MinSell()
	if minSell == nil {
		return nil, nil, &ReadFailure{Op: "minSell", Err: errors.New("minimum sale not yet loaded")}
	}
	if amount.Cmp(minSell) < 0 {
		return nil, nil, validationErrorf("Minimum sale is %s VNT",
			units.ToHumanUnits(minSell, o.ledger.VNTDecimals()))
	}
	return session, amount, nil
}

func (o *Orchestrator) reportValidation(err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		o.presenter.ShowMessage(MsgError, ve.Reason)
		return
	}
	o.presenter.ShowMessage(MsgError, err.Error())
}

func (o *Orchestrator) reportWrite(err error) {
	if errors.Is(err, wallet.ErrUserDeclined) {
		o.presenter.ShowMessage(MsgError, "User rejected transaction")
		return
	}
	o.presenter.ShowMessage(MsgError, err.Error())
}

func (o *Orchestrator) record(ctx context.Context, kind, account string, vnt, usdt *big.Int, res *ethereum.TxResult) {
	if o.recorder == nil {
		return
	}
	rec := &models.SwapRecord{
		Timestamp: time.Now(),
		Kind:      kind,
		Account:   account,
		AmountVNT: vnt.String(),
		TxHash:    res.Hash,
		GasUsed:   int64(res.GasUsed),
		Network:   o.network,
	}
	if usdt != nil {
		s := usdt.String()
		rec.AmountUSDT = &s
	}
	if _, err := o.recorder.Record(ctx, rec); err != nil {
		fmt.Printf("[SWAP] Failed to record %s tx %s: %v\n", kind, res.Hash, err)
	}
}
