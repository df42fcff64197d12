package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// VNTSwap binds the swap contract and its two tokens. Token decimals are
// fetched once at Init and held for the process lifetime.
type VNTSwap struct {
	client         *Client
	swapAddr       common.Address
	vntAddr        common.Address
	usdtAddr       common.Address
	explorerPrefix string
	swapABI        abi.ABI
	erc20ABI       abi.ABI

	vntDecimals  int
	usdtDecimals int
}

// TxResult describes a mined transaction.
type TxResult struct {
	Hash        string
	ExplorerURL string
	GasUsed     uint64
}

func NewVNTSwap(client *Client, swapAddr, vntAddr, usdtAddr, explorerPrefix string) (*VNTSwap, error) {
	sABI, err := abi.JSON(mustSwapABI())
	if err != nil {
		return nil, fmt.Errorf("parse swap ABI: %w", err)
	}
	eABI, err := abi.JSON(mustERC20ABI())
	if err != nil {
		return nil, fmt.Errorf("parse ERC20 ABI: %w", err)
	}
	return &VNTSwap{
		client:         client,
		swapAddr:       common.HexToAddress(swapAddr),
		vntAddr:        common.HexToAddress(vntAddr),
		usdtAddr:       common.HexToAddress(usdtAddr),
		explorerPrefix: explorerPrefix,
		swapABI:        sABI,
		erc20ABI:       eABI,
	}, nil
}

// Init fetches both token decimals. Must be called before any conversion-
// dependent method.
func (v *VNTSwap) Init(ctx context.Context) error {
	vd, err := v.tokenDecimals(ctx, v.vntAddr)
	if err != nil {
		return fmt.Errorf("VNT decimals: %w", err)
	}
	ud, err := v.tokenDecimals(ctx, v.usdtAddr)
	if err != nil {
		return fmt.Errorf("USDT decimals: %w", err)
	}
	v.vntDecimals = vd
	v.usdtDecimals = ud
	fmt.Printf("[CHAIN] Token decimals: VNT=%d USDT=%d\n", vd, ud)
	return nil
}

func (v *VNTSwap) VNTDecimals() int            { return v.vntDecimals }
func (v *VNTSwap) USDTDecimals() int           { return v.usdtDecimals }
func (v *VNTSwap) SwapAddress() common.Address { return v.swapAddr }
func (v *VNTSwap) VNTAddress() common.Address  { return v.vntAddr }

func (v *VNTSwap) ExplorerURL(txHash string) string {
	return v.explorerPrefix + txHash
}

// --- reads ---

func (v *VNTSwap) MinSell(ctx context.Context) (*big.Int, error) {
	return v.callUint(ctx, v.swapAddr, v.swapABI, "minSell")
}

func (v *VNTSwap) PricePerVNT(ctx context.Context) (*big.Int, error) {
	return v.callUint(ctx, v.swapAddr, v.swapABI, "getPricePerVNT")
}

// Quote asks the contract what a sale of vntAmount base units returns in
// USDT base units. Valid only at the moment it is fetched.
func (v *VNTSwap) Quote(ctx context.Context, vntAmount *big.Int) (*big.Int, error) {
	return v.callUint(ctx, v.swapAddr, v.swapABI, "getQuote", vntAmount)
}

// BuyerWallet is the address holding the USDT the contract pays out from.
func (v *VNTSwap) BuyerWallet(ctx context.Context) (common.Address, error) {
	data, err := v.swapABI.Pack("buyerWallet")
	if err != nil {
		return common.Address{}, err
	}
	raw, err := v.client.CallContract(ctx, v.swapAddr, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("buyerWallet call: %w", err)
	}
	vals, err := v.swapABI.Unpack("buyerWallet", raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack buyerWallet: %w", err)
	}
	return vals[0].(common.Address), nil
}

// Liquidity is the USDT balance of the buyer wallet, i.e. how much the
// contract can currently pay out.
func (v *VNTSwap) Liquidity(ctx context.Context) (*big.Int, error) {
	buyer, err := v.BuyerWallet(ctx)
	if err != nil {
		return nil, err
	}
	return v.callUint(ctx, v.usdtAddr, v.erc20ABI, "balanceOf", buyer)
}

func (v *VNTSwap) VNTBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return v.callUint(ctx, v.vntAddr, v.erc20ABI, "balanceOf", owner)
}

// Allowance reports how much of owner's VNT the swap contract may move.
func (v *VNTSwap) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return v.callUint(ctx, v.vntAddr, v.erc20ABI, "allowance", owner, v.swapAddr)
}

// --- writes ---

// Approve grants the swap contract exactly vntAmount of the seller's VNT.
func (v *VNTSwap) Approve(ctx context.Context, from common.Address, vntAmount *big.Int) (*TxResult, error) {
	data, err := v.erc20ABI.Pack("approve", v.swapAddr, vntAmount)
	if err != nil {
		return nil, fmt.Errorf("pack approve: %w", err)
	}
	return v.send(ctx, from, v.vntAddr, data)
}

// Sell executes sellVNT for vntAmount base units.
func (v *VNTSwap) Sell(ctx context.Context, from common.Address, vntAmount *big.Int) (*TxResult, error) {
	data, err := v.swapABI.Pack("sellVNT", vntAmount)
	if err != nil {
		return nil, fmt.Errorf("pack sellVNT: %w", err)
	}
	return v.send(ctx, from, v.swapAddr, data)
}

// --- helpers ---

func (v *VNTSwap) send(ctx context.Context, from, to common.Address, data []byte) (*TxResult, error) {
	receipt, err := v.client.SendAndWait(ctx, from, to, big.NewInt(0), data)
	if err != nil {
		return nil, err
	}
	hash := receipt.TxHash.Hex()
	return &TxResult{
		Hash:        hash,
		ExplorerURL: v.ExplorerURL(hash),
		GasUsed:     receipt.GasUsed,
	}, nil
}

func (v *VNTSwap) tokenDecimals(ctx context.Context, token common.Address) (int, error) {
	data, err := v.erc20ABI.Pack("decimals")
	if err != nil {
		return 0, err
	}
	raw, err := v.client.CallContract(ctx, token, data)
	if err != nil {
		return 0, fmt.Errorf("decimals call: %w", err)
	}
	vals, err := v.erc20ABI.Unpack("decimals", raw)
	if err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}
	return int(vals[0].(uint8)), nil
}

func (v *VNTSwap) callUint(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := v.client.CallContract(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("%s call: %w", method, err)
	}
	vals, err := contractABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	out, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, vals[0])
	}
	return out, nil
}
