package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vntlabs/vnt-swap-backend/internal/swap"
	"github.com/vntlabs/vnt-swap-backend/internal/units"
	"github.com/vntlabs/vnt-swap-backend/internal/wallet"
)

const priceDecimals = 18

type marketResponse struct {
	Price            string `json:"price"`          // base units (1e18 scale)
	PriceDisplay     string `json:"priceDisplay"`   // human USDT per VNT
	MinSell          string `json:"minSell"`        // VNT base units
	MinSellDisplay   string `json:"minSellDisplay"` // human VNT
	Liquidity        string `json:"liquidity"`      // USDT base units
	LiquidityDisplay string `json:"liquidityDisplay"`
	VNTContract      string `json:"vntContract"`
	UpdatedAt        string `json:"updatedAt"`
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	snap := s.market.Snapshot()
	if snap.MinSell == nil {
		writeError(w, http.StatusServiceUnavailable, "market data not yet loaded")
		return
	}

	writeJSON(w, http.StatusOK, marketResponse{
		Price:            snap.Price.String(),
		PriceDisplay:     units.ToHumanUnits(snap.Price, priceDecimals),
		MinSell:          snap.MinSell.String(),
		MinSellDisplay:   units.ToHumanUnits(snap.MinSell, s.ledger.VNTDecimals()),
		Liquidity:        snap.Liquidity.String(),
		LiquidityDisplay: units.ToHumanUnits(snap.Liquidity, s.ledger.USDTDecimals()),
		VNTContract:      s.vntAddress,
		UpdatedAt:        snap.UpdatedAt.UTC().Format(timeLayout),
	})
}

type quoteResponse struct {
	State       string `json:"state"`
	AmountVNT   string `json:"amountVnt,omitempty"`
	AmountUSDT  string `json:"amountUsdt,omitempty"`
	USDTDisplay string `json:"usdtDisplay,omitempty"`
	Approved    bool   `json:"approved"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	amount := r.URL.Query().Get("amount")

	// Without a session the allowance lookup fails closed, which is exactly
	// the affordance a disconnected page should see.
	var account common.Address
	if session, ok := s.sessions.Current(); ok {
		account = session.Account
	}

	res := s.engine.Request(r.Context(), account, amount)
	if res.Stale {
		writeError(w, http.StatusConflict, "superseded by a newer quote request")
		return
	}

	// Mirror the result to the presenter so the quote display and the
	// approve/sell affordances track the latest request.
	if s.presenter != nil {
		swap.Render(s.presenter, res)
	}

	resp := quoteResponse{State: res.State.String(), Approved: res.Approved}
	if res.AmountVNT != nil {
		resp.AmountVNT = res.AmountVNT.String()
	}
	if res.AmountUSDT != nil {
		resp.AmountUSDT = res.AmountUSDT.String()
		resp.USDTDisplay = res.USDTDisplay
	}
	writeJSON(w, http.StatusOK, resp)
}

type txRequest struct {
	Amount string `json:"amount"`
}

type txResponse struct {
	TxHash      string `json:"txHash"`
	ExplorerURL string `json:"explorerUrl"`
	GasUsed     uint64 `json:"gasUsed"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req txRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.orch.Approve(r.Context(), req.Amount)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{TxHash: res.Hash, ExplorerURL: res.ExplorerURL, GasUsed: res.GasUsed})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req txRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.orch.Sell(r.Context(), req.Amount)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{TxHash: res.Hash, ExplorerURL: res.ExplorerURL, GasUsed: res.GasUsed})
}

// writeFlowError maps the swap failure taxonomy onto HTTP statuses.
func writeFlowError(w http.ResponseWriter, err error) {
	var ve *swap.ValidationError
	var rf *swap.ReadFailure

	switch {
	case errors.Is(err, wallet.ErrUserDeclined):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "user declined the request",
			"code":  "user_declined",
		})
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Reason)
	case errors.As(err, &rf):
		writeError(w, http.StatusBadGateway, rf.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

// --- session ---

type sessionResponse struct {
	Connected bool   `json:"connected"`
	Account   string `json:"account,omitempty"`
	ChainID   int64  `json:"chainId,omitempty"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	session, err := s.orch.Connect(r.Context())
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Connected: true,
		Account:   session.Account.Hex(),
		ChainID:   session.ChainID.Int64(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Current()
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Connected: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Connected: true,
		Account:   session.Account.Hex(),
		ChainID:   session.ChainID.Int64(),
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.sessions.Disconnect()
	writeJSON(w, http.StatusOK, sessionResponse{Connected: false})
}
