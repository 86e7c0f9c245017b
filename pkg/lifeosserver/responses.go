package lifeosserver

import (
	"net/http"

	"github.com/lifeos/lifeos/pkg/api"
)

func failureResponse(w http.ResponseWriter, statusCode int, message string) {
	api.RespondWithFailure(statusCode, w, message)
}
