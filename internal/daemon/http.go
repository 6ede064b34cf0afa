package daemon

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"redraft/internal/api"
)

// multipartOverhead leaves room for multipart boundaries and headers on top
// of the document payload itself.
const multipartOverhead = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, api.ErrorResponse{Code: code, Message: message})
}

func newRequestID() string {
	return uuid.NewString()
}
