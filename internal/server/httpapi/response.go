// Package httpapi implements the REST surface of the server. All responses
// use the {detail, data} envelope; list endpoints additionally carry a total
// row count for pagination.
package httpapi

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Detail string `json:"detail"`
	Data   any    `json:"data,omitempty"`
	Total  *int   `json:"total,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, detail string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Detail: detail, Data: data})
}

func writeList(w http.ResponseWriter, detail string, data any, total int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Detail: detail, Data: data, Total: &total})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detail, nil)
}
