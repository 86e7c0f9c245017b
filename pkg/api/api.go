package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// RespondWithJSON writes the data out as JSON with the given status code.
func RespondWithJSON(statusCode int, w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("could not write response")
	}
}

// RespondWithFailure writes a {"code": ..., "message": ...} error body.
func RespondWithFailure(statusCode int, w http.ResponseWriter, message string) {
	RespondWithJSON(statusCode, w, map[string]interface{}{
		"code":    statusCode,
		"message": message,
	})
}
