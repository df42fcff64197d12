package models

import "time"

// Swap kinds as stored in swap_history.
const (
	SwapKindApprove = "approve"
	SwapKindSell    = "sell"
)

// SwapRecord is one mined approve or sell transaction. Token amounts are
// base-unit decimal strings; they can exceed int64 and must never pass
// through floating point.
type SwapRecord struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	TradingDay string    `json:"tradingDay"`
	Kind       string    `json:"kind"` // "approve" or "sell"
	Account    string    `json:"account"`
	AmountVNT  string    `json:"amountVnt"`
	AmountUSDT *string   `json:"amountUsdt,omitempty"` // sells only, when the quote was readable
	TxHash     string    `json:"txHash"`
	GasUsed    int64     `json:"gasUsed"`
	Network    string    `json:"network"`
	CreatedAt  time.Time `json:"createdAt"`
}

type SwapStats struct {
	TotalSwaps   int64      `json:"totalSwaps"`
	ApproveCount int64      `json:"approveCount"`
	SellCount    int64      `json:"sellCount"`
	TotalVNTSold *string    `json:"totalVntSold"` // base units, summed in SQL
	FirstSwap    *time.Time `json:"firstSwap"`
	LastSwap     *time.Time `json:"lastSwap"`
}
