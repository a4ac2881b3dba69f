package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"DataScope/src/dataset"
	"DataScope/src/table"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.manager.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"dataset": snap.Name,
		"state":   snap.State,
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"datasets": s.catalog.Keys()})
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Rescan(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": s.catalog.Keys()})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("decode body: %w", err))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "name is required"})
		return
	}

	snap, err := s.manager.Select(req.Name)
	if err != nil {
		if errors.Is(err, dataset.ErrUnknownDataset) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		} else {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Snapshot())
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	classes, err := s.manager.ColumnClasses()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// activeTable resolves the ready dataset and applies any column shaping
// requested through include_columns / exclude_columns query parameters.
func (s *Server) activeTable(r *http.Request) (string, table.Table, error) {
	name, tbl, err := s.manager.Active()
	if err != nil {
		return "", table.Table{}, err
	}
	if spec := shapeSpec(r); !spec.IsZero() {
		tbl = table.Shape(tbl, spec, s.logger.Logger)
	}
	return name, tbl, nil
}

func shapeSpec(r *http.Request) table.ColumnSpec {
	q := r.URL.Query()
	return table.ColumnSpec{
		Include: q["include_columns"],
		Exclude: q["exclude_columns"],
	}
}
