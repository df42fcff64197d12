package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Network is one chain profile. The swap logic is identical across networks;
// only the addresses, chain id and endpoints differ.
type Network struct {
	Name             string
	ChainID          int64
	RPCURL           string
	SwapAddress      string
	VNTTokenAddress  string
	USDTTokenAddress string
	ExplorerTxPrefix string
}

var networks = map[string]Network{
	"mainnet": {
		Name:             "mainnet",
		ChainID:          56,
		RPCURL:           "https://bsc-dataseed.binance.org/",
		ExplorerTxPrefix: "https://bscscan.com/tx/",
	},
	"testnet": {
		Name:             "testnet",
		ChainID:          97,
		RPCURL:           "https://data-seed-prebsc-1-s1.binance.org:8545/",
		ExplorerTxPrefix: "https://testnet.bscscan.com/tx/",
	},
}

type Config struct {
	// Secrets (from .env)
	PrivateKey      string
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Blockchain
	Network Network

	// Gas
	GasLimit      int
	GasMultiplier float64

	// Timing
	MarketRefreshSeconds  int
	ReceiptTimeoutSeconds int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	netName := strings.ToLower(envStr("NETWORK", "mainnet"))
	net, ok := networks[netName]
	if !ok {
		return nil, fmt.Errorf("unknown NETWORK %q (want mainnet or testnet)", netName)
	}

	// Profile endpoints are overridable per deployment; the contract
	// addresses have no defaults and must be configured.
	net.RPCURL = envStr("RPC_URL", net.RPCURL)
	net.SwapAddress = envStr("SWAP_CONTRACT_ADDRESS", "")
	net.VNTTokenAddress = envStr("VNT_TOKEN_ADDRESS", "")
	net.USDTTokenAddress = envStr("USDT_TOKEN_ADDRESS", "")

	cfg := &Config{
		PrivateKey:      envStr("PRIVATE_KEY", ""),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "VNTSwapBackend"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "vnt_swap"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		Network: net,

		GasLimit:      envInt("GAS_LIMIT", 250000),
		GasMultiplier: envFloat("GAS_MULTIPLIER", 1.2),

		MarketRefreshSeconds:  envInt("MARKET_REFRESH_SECONDS", 60),
		ReceiptTimeoutSeconds: envInt("RECEIPT_TIMEOUT_SECONDS", 120),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.PrivateKey == "" {
		errs = append(errs, "PRIVATE_KEY is required")
	}
	if c.Network.SwapAddress == "" {
		errs = append(errs, "SWAP_CONTRACT_ADDRESS is required")
	}
	if c.Network.VNTTokenAddress == "" {
		errs = append(errs, "VNT_TOKEN_ADDRESS is required")
	}
	if c.Network.USDTTokenAddress == "" {
		errs = append(errs, "USDT_TOKEN_ADDRESS is required")
	}
	if c.Network.RPCURL == "" {
		errs = append(errs, "RPC_URL is required")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set — REST API has no authentication")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set — swap notifications disabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== VNT Swap Backend Configuration ===")
	fmt.Printf("Network: %s (chain id %d)\n", c.Network.Name, c.Network.ChainID)
	fmt.Printf("RPC: %s\n", c.Network.RPCURL)
	fmt.Printf("Swap contract: %s\n", truncAddr(c.Network.SwapAddress))
	fmt.Printf("VNT token: %s\n", truncAddr(c.Network.VNTTokenAddress))
	fmt.Printf("USDT token: %s\n", truncAddr(c.Network.USDTTokenAddress))
	fmt.Println("--------------------------------------")
	fmt.Printf("Gas limit: %d (x%.1f price multiplier)\n", c.GasLimit, c.GasMultiplier)
	fmt.Printf("Market refresh: every %ds\n", c.MarketRefreshSeconds)
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func truncAddr(addr string) string {
	if len(addr) > 10 {
		return addr[:10] + "..."
	}
	return addr
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
