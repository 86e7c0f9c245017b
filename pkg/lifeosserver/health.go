package lifeosserver

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/api"
)

func (s *Server) jsonHealth(w http.ResponseWriter, req *http.Request) {
	var alive int
	if err := s.db.DB.Raw("SELECT 1").Scan(&alive).Error; err != nil {
		log.WithError(err).Error("health check database probe failed")
		failureResponse(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]string{"status": "ok"})
}
