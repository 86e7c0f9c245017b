package lifeosserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/api"
	"github.com/lifeos/lifeos/pkg/vector"
)

type studyAskRequest struct {
	MessageID uuid.UUID `json:"messageId"`
	Question  string    `json:"question"`
}

func (s *Server) jsonStudyAsk(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	var request studyAskRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if request.MessageID == uuid.Nil || strings.TrimSpace(request.Question) == "" {
		failureResponse(w, http.StatusBadRequest, "Missing fields for ask")
		return
	}

	if message := s.ownedMessageByID(w, req, request.MessageID); message == nil {
		return
	}

	answer, err := s.assistant.Ask(req.Context(), user.ID, request.MessageID, request.Question)
	if err != nil {
		log.WithError(err).Error("study ask failed")
		failureResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"success": true,
		"answer":  answer,
	})
}

type studyEmbedRequest struct {
	MessageID uuid.UUID `json:"messageId"`
	Content   string    `json:"content"`
}

// jsonStudyEmbed manually (re)embeds content for a message, the escape hatch
// for entries the pipeline missed.
func (s *Server) jsonStudyEmbed(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	var request studyEmbedRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if request.MessageID == uuid.Nil || strings.TrimSpace(request.Content) == "" {
		failureResponse(w, http.StatusBadRequest, "Missing fields")
		return
	}

	if message := s.ownedMessageByID(w, req, request.MessageID); message == nil {
		return
	}

	vectors, err := s.embedder.Embed(req.Context(), []string{request.Content})
	if err != nil || len(vectors) == 0 {
		log.WithError(err).Error("could not embed study content")
		failureResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	entry := vector.Entry{
		UserID:    user.ID,
		MessageID: request.MessageID,
		Content:   request.Content,
		Values:    vectors[0],
	}
	if err := s.index.Upsert(req.Context(), entry); err != nil {
		log.WithError(err).Error("could not upsert study embedding")
		failureResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]bool{"success": true})
}
