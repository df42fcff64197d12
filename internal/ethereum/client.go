package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vntlabs/vnt-swap-backend/internal/wallet"
)

// Client wraps an RPC connection and a wallet provider. It builds and
// broadcasts transactions but never holds key material itself; signing is
// delegated to the provider, which may decline.
type Client struct {
	rpc            *ethclient.Client
	provider       wallet.Provider
	chainID        *big.Int
	gasLimit       uint64
	gasMul         float64
	receiptTimeout time.Duration
}

func NewClient(rpcURL string, provider wallet.Provider, chainID int64, gasLimit int, gasMultiplier float64, receiptTimeout time.Duration) (*Client, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}

	return &Client{
		rpc:            rpc,
		provider:       provider,
		chainID:        big.NewInt(chainID),
		gasLimit:       uint64(gasLimit),
		gasMul:         gasMultiplier,
		receiptTimeout: receiptTimeout,
	}, nil
}

func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }
func (c *Client) Close()            { c.rpc.Close() }

// VerifyChain compares the node's reported chain id with the configured one.
func (c *Client) VerifyChain(ctx context.Context) error {
	id, err := c.rpc.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("query chain id: %w", err)
	}
	if id.Cmp(c.chainID) != 0 {
		return fmt.Errorf("RPC is on chain %s, expected %s", id, c.chainID)
	}
	return nil
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	mul := new(big.Float).SetFloat64(c.gasMul)
	adjusted := new(big.Float).Mul(new(big.Float).SetInt(price), mul)
	result, _ := adjusted.Int(nil)
	return result, nil
}

// SendAndWait builds a transaction for `from`, has the provider sign it,
// broadcasts it and blocks until it is mined or the receipt timeout fires.
// A reverted transaction is reported as an error carrying the tx hash.
func (c *Client) SendAndWait(ctx context.Context, from, to common.Address, value *big.Int, data []byte) (*types.Receipt, error) {
	nonce, err := c.rpc.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}
	gasPrice, err := c.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      c.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := c.provider.SignTx(tx, c.chainID)
	if err != nil {
		// Preserve wallet.ErrUserDeclined for the caller's taxonomy.
		return nil, err
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.rpc, signed)
	if err != nil {
		return nil, fmt.Errorf("wait for tx %s: %w", signed.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("tx %s reverted", signed.Hash().Hex())
	}
	return receipt, nil
}

// CallContract performs a read-only eth_call against the latest block.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{To: &to, Data: data}
	return c.rpc.CallContract(ctx, msg, nil)
}
