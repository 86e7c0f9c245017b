package lifeosserver

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/api"
)

func (s *Server) jsonWeeklySummary(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	text, err := s.generator.Weekly(req.Context(), user.ID)
	if err != nil {
		log.WithError(err).Error("error generating summary")
		failureResponse(w, http.StatusInternalServerError, "Failed to generate summary")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]string{"summary": text})
}
