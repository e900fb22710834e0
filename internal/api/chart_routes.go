package api

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kjannette/fng-correlation-backend/internal/export"
)

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
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

	data, err := s.charts.ChartData(r.Context(), coinID, start, end)
	if err != nil {
		writeFetchError(w, r, "chart data", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
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

	tmp, err := s.charts.ExportFile(r.Context(), s.exportDir, coinID, start, end)
	if err != nil {
		writeFetchError(w, r, "csv export", err)
		return
	}
	defer func() {
		if err := tmp.Remove(); err != nil {
			fmt.Printf("[EXPORT] %s cleanup %s: %v\n", requestID(r), tmp.Path, err)
		}
	}()

	f, err := os.Open(tmp.Path)
	if err != nil {
		fmt.Printf("[EXPORT] %s open %s: %v\n", requestID(r), tmp.Path, err)
		writeError(w, http.StatusInternalServerError, kindInternal, "failed to read export")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	http.ServeContent(w, r, export.FileName, time.Now(), f)
}
