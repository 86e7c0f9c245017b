package lifeosserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/api"
	"github.com/lifeos/lifeos/pkg/db/models"
	"github.com/lifeos/lifeos/pkg/db/query"
)

// ownedMessageByVar is ownedMessage for routes keyed by a messageId path
// variable instead of id.
func (s *Server) ownedMessageByVar(w http.ResponseWriter, req *http.Request) *models.Message {
	id, err := uuid.Parse(mux.Vars(req)["messageId"])
	if err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid message ID format")
		return nil
	}
	return s.ownedMessageByID(w, req, id)
}

func (s *Server) jsonGetIdea(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessageByVar(w, req)
	if message == nil {
		return
	}

	idea, err := query.IdeaForMessage(s.db, message.ID)
	if err != nil {
		log.WithError(err).Error("could not load idea")
		failureResponse(w, http.StatusInternalServerError, "Failed to load idea")
		return
	}
	if idea == nil {
		failureResponse(w, http.StatusNotFound, "No idea detail for this message")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, idea)
}

type ideaRequest struct {
	Why  string `json:"why"`
	How  string `json:"how"`
	When string `json:"when"`
}

func (s *Server) jsonUpsertIdea(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessageByVar(w, req)
	if message == nil {
		return
	}

	var request ideaRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	idea := models.Idea{
		MessageID: message.ID,
		Why:       request.Why,
		How:       request.How,
		When:      request.When,
	}
	if err := query.UpsertIdea(s.db, &idea); err != nil {
		log.WithError(err).Error("could not upsert idea")
		failureResponse(w, http.StatusInternalServerError, "Failed to save idea")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, idea)
}

func (s *Server) jsonGetTask(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessageByVar(w, req)
	if message == nil {
		return
	}

	task, err := query.TaskForMessage(s.db, message.ID)
	if err != nil {
		log.WithError(err).Error("could not load task")
		failureResponse(w, http.StatusInternalServerError, "Failed to load task")
		return
	}
	if task == nil {
		failureResponse(w, http.StatusNotFound, "No task detail for this message")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, task)
}

type taskRequest struct {
	Deadline *time.Time `json:"deadline"`
	Priority *string    `json:"priority"`
	Labels   []string   `json:"labels"`
}

func (s *Server) jsonUpsertTask(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessageByVar(w, req)
	if message == nil {
		return
	}

	var request taskRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	task := models.Task{
		MessageID: message.ID,
		Deadline:  request.Deadline,
		Labels:    pq.StringArray(request.Labels),
	}
	if request.Priority != nil {
		priority := models.Priority(*request.Priority)
		if !priority.IsValid() {
			failureResponse(w, http.StatusBadRequest, "invalid priority")
			return
		}
		task.Priority = &priority
	}

	if err := query.UpsertTask(s.db, &task); err != nil {
		log.WithError(err).Error("could not upsert task")
		failureResponse(w, http.StatusInternalServerError, "Failed to save task")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, task)
}
