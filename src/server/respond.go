package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"DataScope/src/dataset"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP statuses: unknown dataset is 404,
// no ready dataset is 409, everything else a handler reports is a bad
// request.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrNoDataset):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
