package httputil

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// WriteJSON writes data as the JSON body of a response with the given status.
// Encoding failures can only be logged since the status is already sent.
func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
