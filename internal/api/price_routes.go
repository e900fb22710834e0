package api

import (
	"net/http"

	"github.com/kjannette/fng-correlation-backend/internal/external"
	"github.com/kjannette/fng-correlation-backend/internal/models"
)

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	coinID := r.PathValue("coinId")
	if !validateCoinID(coinID) {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "invalid coin id")
		return
	}
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	body, err := s.market.MarketChartRaw(r.Context(), coinID, start, end)
	if err != nil {
		writeFetchError(w, r, "prices", err)
		return
	}
	writeRaw(w, http.StatusOK, "application/json", body)
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := s.market.ListCoins(r.Context())
	if err != nil {
		writeFetchError(w, r, "coins", err)
		return
	}
	writeJSON(w, http.StatusOK, external.FilterCoins(coins, s.coinNames))
}

func (s *Server) handleFearGreed(w http.ResponseWriter, r *http.Request) {
	hist, err := s.sentiment.History(r.Context())
	if err != nil {
		writeFetchError(w, r, "fear and greed index", err)
		return
	}
	writeJSON(w, http.StatusOK, external.History{
		Name:     hist.Name,
		Data:     models.Chronological(hist.Data),
		Metadata: hist.Metadata,
	})
}
