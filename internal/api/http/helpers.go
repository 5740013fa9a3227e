package http

import (
	"encoding/json"
	"time"

	nethttp "net/http"

	"github.com/google/uuid"
)

// Handlers only — routes remain in main.go

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *nethttp.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func newID() string { return uuid.NewString() }

func nowUnix() int64 { return time.Now().Unix() }
