package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntlabs/vnt-swap-backend/internal/repository"
	"github.com/vntlabs/vnt-swap-backend/internal/swap"
	"github.com/vntlabs/vnt-swap-backend/internal/wallet"
)

const maxQueryLimit = 1000

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Server exposes the swap flow to the browser front end: market data,
// quoting, and the approve/sell transaction endpoints, plus swap history.
type Server struct {
	pool       *pgxpool.Pool
	swapRepo   *repository.SwapRepo
	priceRepo  *repository.PriceRepo
	ledger     swap.Ledger
	market     *swap.Market
	engine     *swap.Engine
	orch       *swap.Orchestrator
	sessions   *wallet.Manager
	presenter  swap.Presenter
	vntAddress string
	httpServer *http.Server
	apiKey     string
}

func NewServer(
	pool *pgxpool.Pool,
	ledger swap.Ledger,
	market *swap.Market,
	engine *swap.Engine,
	orch *swap.Orchestrator,
	sessions *wallet.Manager,
	presenter swap.Presenter,
	vntAddress string,
	port int,
	apiKey, corsOrigin string,
) *Server {
	s := &Server{
		pool:       pool,
		swapRepo:   repository.NewSwapRepo(pool),
		priceRepo:  repository.NewPriceRepo(pool),
		ledger:     ledger,
		market:     market,
		engine:     engine,
		orch:       orch,
		sessions:   sessions,
		presenter:  presenter,
		vntAddress: vntAddress,
		apiKey:     apiKey,
	}

	mux := http.NewServeMux()

	// Swap flow
	mux.HandleFunc("GET /v1/market", s.handleMarket)
	mux.HandleFunc("GET /v1/quote", s.handleQuote)
	mux.HandleFunc("POST /v1/approve", s.handleApprove)
	mux.HandleFunc("POST /v1/sell", s.handleSell)

	// Session
	mux.HandleFunc("POST /v1/session/connect", s.handleConnect)
	mux.HandleFunc("GET /v1/session", s.handleSession)
	mux.HandleFunc("DELETE /v1/session", s.handleDisconnect)

	// History
	mux.HandleFunc("GET /v1/swaps/today", s.handleSwapsToday)
	mux.HandleFunc("GET /v1/swaps/day/{date}", s.handleSwapsByDay)
	mux.HandleFunc("GET /v1/swaps/all", s.handleAllSwaps)
	mux.HandleFunc("GET /v1/swaps/stats", s.handleSwapStats)
	mux.HandleFunc("GET /v1/prices/latest", s.handleLatestPrice)
	mux.HandleFunc("GET /v1/prices/day/{date}", s.handlePricesByDay)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute, // approve/sell block until the tx is mined
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
