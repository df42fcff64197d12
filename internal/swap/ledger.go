package swap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vntlabs/vnt-swap-backend/internal/ethereum"
)

// Ledger is the authoritative on-chain contract: the only source of truth
// for price, minimum sale, quotes, allowances and balances. The client
// mirrors some of its checks for UX but never replaces them.
// Implemented by *ethereum.VNTSwap; tests substitute mocks.
type Ledger interface {
	MinSell(ctx context.Context) (*big.Int, error)
	PricePerVNT(ctx context.Context) (*big.Int, error)
	Quote(ctx context.Context, vntAmount *big.Int) (*big.Int, error)
	Liquidity(ctx context.Context) (*big.Int, error)
	VNTBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner common.Address) (*big.Int, error)

	Approve(ctx context.Context, from common.Address, vntAmount *big.Int) (*ethereum.TxResult, error)
	Sell(ctx context.Context, from common.Address, vntAmount *big.Int) (*ethereum.TxResult, error)

	VNTDecimals() int
	USDTDecimals() int
}
