package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"DataScope/src/descriptive"
	"DataScope/src/table"
)

func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, cols := descriptive.Shape(tbl)
	writeJSON(w, http.StatusOK, map[string]int{"rows": rows, "columns": cols})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	name, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"info": descriptive.Info(tbl, name)})
}

func (s *Server) handleNumerical(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := descriptive.NumericalSummary(tbl, queryInt(r, "precision", -1))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table.Encode(res))
}

func (s *Server) handleCategorical(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := descriptive.CategoricalSummary(tbl)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUniqueCounts(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, descriptive.UniqueCounts(tbl))
}

func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	column := r.URL.Query().Get("column")
	if column == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "column query parameter is required"})
		return
	}
	res, err := descriptive.FrequencyTable(tbl, column)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table.Encode(res))
}

func (s *Server) handleCrosstab(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var spec descriptive.CrosstabSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, fmt.Errorf("decode body: %w", err))
		return
	}
	res, err := descriptive.Crosstab(tbl, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table.Encode(res))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Columns []string `json:"columns"`
		Values  []any    `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("decode body: %w", err))
		return
	}
	recs, err := descriptive.FilterRecords(tbl, req.Columns, req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs, "count": len(recs)})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.activeTable(r)
	if err != nil {
		writeError(w, err)
		return
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", s.cfg.Data.PreviewRows)
	res, err := descriptive.Records(tbl, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table.Encode(res))
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
