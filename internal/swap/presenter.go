package swap

import "fmt"

type MessageKind string

const (
	MsgStatus  MessageKind = "status"
	MsgSuccess MessageKind = "success"
	MsgError   MessageKind = "error"
)

// Presenter is the boundary to whatever renders the UI. The core only ever
// pushes formatted strings and enable/disable flags; it never touches a DOM.
type Presenter interface {
	ShowQuote(usdtDisplay string)
	HideQuote()
	// SetControls flips the Approve and Sell affordances.
	SetControls(approveEnabled, sellEnabled bool)
	ShowMarket(priceDisplay, minSellDisplay, liquidityDisplay string)
	ShowMessage(kind MessageKind, text string)
}

// LogPresenter writes display updates to the process log. It stands in for
// a real front end and keeps the orchestrator observable in development.
type LogPresenter struct{}

func (LogPresenter) ShowQuote(usdtDisplay string) {
	fmt.Printf("[UI] Quote: %s USDT\n", usdtDisplay)
}

func (LogPresenter) HideQuote() {
	fmt.Println("[UI] Quote hidden")
}

func (LogPresenter) SetControls(approveEnabled, sellEnabled bool) {
	fmt.Printf("[UI] Controls: approve=%v sell=%v\n", approveEnabled, sellEnabled)
}

func (LogPresenter) ShowMarket(priceDisplay, minSellDisplay, liquidityDisplay string) {
	fmt.Printf("[UI] Market: price=%s USDT/VNT minSell=%s VNT liquidity=%s USDT\n",
		priceDisplay, minSellDisplay, liquidityDisplay)
}

func (LogPresenter) ShowMessage(kind MessageKind, text string) {
	fmt.Printf("[UI] [%s] %s\n", kind, text)
}
