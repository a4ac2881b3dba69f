package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"DataScope/src/plots"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var reqs []plots.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, fmt.Errorf("decode body: %w", err))
		return
	}
	png, err := plots.Render(tbl, reqs, plots.Options{})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
