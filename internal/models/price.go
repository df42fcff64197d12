package models

import "time"

// PricePoint is one on-chain market snapshot: the contract's published
// price per VNT, the buyer wallet's USDT liquidity and the minimum-sale
// floor, all as base-unit decimal strings.
type PricePoint struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	TradingDay    string    `json:"tradingDay"`
	PriceUSDT     string    `json:"priceUsdt"`
	LiquidityUSDT string    `json:"liquidityUsdt"`
	MinSellVNT    string    `json:"minSellVnt"`
	CreatedAt     time.Time `json:"createdAt"`
}
