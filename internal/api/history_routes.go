package api

import (
	"net/http"

	"github.com/vntlabs/vnt-swap-backend/internal/models"
	"github.com/vntlabs/vnt-swap-backend/internal/repository"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

func (s *Server) handleSwapsToday(w http.ResponseWriter, r *http.Request) {
	swaps, err := s.swapRepo.GetByDay(r.Context(), repository.TradingDayNow())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, swaps)
}

func (s *Server) handleSwapsByDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validateDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	swaps, err := s.swapRepo.GetByDay(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, swaps)
}

func (s *Server) handleAllSwaps(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)
	swaps, err := s.swapRepo.GetAll(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, swaps)
}

type swapStatsResponse struct {
	*models.SwapStats
	SwapsToday int `json:"swapsToday"`
}

func (s *Server) handleSwapStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.swapRepo.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	today, err := s.swapRepo.CountToday(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, swapStatsResponse{SwapStats: stats, SwapsToday: today})
}

func (s *Server) handleLatestPrice(w http.ResponseWriter, r *http.Request) {
	p, err := s.priceRepo.GetLatest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no price snapshots recorded yet")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePricesByDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validateDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	prices, err := s.priceRepo.GetByDay(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prices)
}
