package lifeosserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lifeos/lifeos/pkg/api"
	"github.com/lifeos/lifeos/pkg/apis/queue"
	"github.com/lifeos/lifeos/pkg/db/models"
	"github.com/lifeos/lifeos/pkg/db/query"
	"github.com/lifeos/lifeos/pkg/util/param"
)

const maxContentLen = 10000

type createMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) jsonCreateMessage(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	var request createMessageRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	request.Content = strings.TrimSpace(request.Content)
	if request.Content == "" {
		failureResponse(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(request.Content) > maxContentLen {
		failureResponse(w, http.StatusBadRequest, "content is too long")
		return
	}

	message := models.Message{
		UserID:  user.ID,
		Content: request.Content,
	}
	if err := s.db.DB.Create(&message).Error; err != nil {
		log.WithError(err).Error("could not create message")
		failureResponse(w, http.StatusInternalServerError, "Failed to save message")
		return
	}

	// Publish failures do not fail the request; the message exists, it just
	// stays unclassified until something re-emits the event.
	ev := queue.MessageCreated{
		MessageID: message.ID,
		UserID:    user.ID,
		Content:   message.Content,
	}
	if err := s.queue.Publish(req.Context(), ev); err != nil {
		log.WithError(err).WithField("messageID", message.ID).Error("could not publish enrichment event")
	}

	api.RespondWithJSON(http.StatusCreated, w, message)
}

func (s *Server) jsonMessagesByCategory(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	raw := param.SafeRead(req, "type")
	if raw == "" {
		failureResponse(w, http.StatusBadRequest, "type parameter is required")
		return
	}
	category, ok := models.ParseCategory(raw)
	if !ok {
		failureResponse(w, http.StatusBadRequest, "invalid category: "+param.Cleanse(raw))
		return
	}

	messages, err := query.MessagesByCategory(s.db, user.ID, category)
	if err != nil {
		log.WithError(err).Error("could not list messages")
		failureResponse(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, messages)
}

func (s *Server) jsonTimeline(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	rawDate := param.SafeRead(req, "date")
	if rawDate == "" {
		failureResponse(w, http.StatusBadRequest, "date parameter is required, format YYYY-MM-DD")
		return
	}
	day, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		failureResponse(w, http.StatusBadRequest, "invalid date: "+param.Cleanse(rawDate))
		return
	}

	messages, err := query.MessagesForDay(s.db, user.ID, day)
	if err != nil {
		log.WithError(err).Error("could not load timeline")
		failureResponse(w, http.StatusInternalServerError, "Failed to load timeline")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, messages)
}

// messageStats summarizes the user's writing activity over the last 30 days.
type messageStats struct {
	Days         []query.DayCount `json:"days"`
	Total        int              `json:"total"`
	MeanPerDay   float64          `json:"mean_per_day"`
	MedianPerDay float64          `json:"median_per_day"`
	MaxPerDay    float64          `json:"max_per_day"`
}

func (s *Server) jsonMessageStats(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	window := 30
	if raw := param.SafeRead(req, "days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			failureResponse(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		window = parsed
	}

	days, err := query.MessageCountsByDay(s.db, user.ID, window)
	if err != nil {
		log.WithError(err).Error("could not load message counts")
		failureResponse(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	counts := make([]float64, 0, len(days))
	total := 0
	for _, d := range days {
		counts = append(counts, float64(d.Count))
		total += d.Count
	}

	result := messageStats{Days: days, Total: total}
	if len(counts) > 0 {
		result.MeanPerDay, _ = stats.Mean(counts)
		result.MedianPerDay, _ = stats.Median(counts)
		result.MaxPerDay, _ = stats.Max(counts)
	}

	api.RespondWithJSON(http.StatusOK, w, result)
}

// ownedMessage loads the message and enforces that it belongs to the session
// user. Messages owned by someone else read as not found.
func (s *Server) ownedMessage(w http.ResponseWriter, req *http.Request) *models.Message {
	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid message ID format")
		return nil
	}
	return s.ownedMessageByID(w, req, id)
}

func (s *Server) ownedMessageByID(w http.ResponseWriter, req *http.Request, id uuid.UUID) *models.Message {
	user := currentUser(req)

	message, err := query.MessageByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failureResponse(w, http.StatusNotFound, "Message not found")
		} else {
			log.WithError(err).Error("could not load message")
			failureResponse(w, http.StatusInternalServerError, "Failed to load message")
		}
		return nil
	}

	if message.UserID != user.ID {
		failureResponse(w, http.StatusNotFound, "Message not found")
		return nil
	}
	return message
}

func (s *Server) jsonGetMessage(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessage(w, req)
	if message == nil {
		return
	}

	detail, err := query.DetailForMessage(s.db, message)
	if err != nil {
		log.WithError(err).Error("could not load message detail")
		failureResponse(w, http.StatusInternalServerError, "Failed to load message")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"message": message,
		"detail":  detail,
	})
}

type updateMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) jsonUpdateMessage(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessage(w, req)
	if message == nil {
		return
	}

	var request updateMessageRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	request.Content = strings.TrimSpace(request.Content)
	if request.Content == "" {
		failureResponse(w, http.StatusBadRequest, "content is required")
		return
	}

	if err := s.db.DB.Model(message).Update("content", request.Content).Error; err != nil {
		log.WithError(err).Error("could not update message")
		failureResponse(w, http.StatusInternalServerError, "Failed to update message")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, message)
}

func (s *Server) jsonToggleMessage(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessage(w, req)
	if message == nil {
		return
	}

	if err := s.db.DB.Model(message).Update("completed", !message.Completed).Error; err != nil {
		log.WithError(err).Error("could not toggle message")
		failureResponse(w, http.StatusInternalServerError, "Failed to update message")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, message)
}

func (s *Server) jsonDeleteMessage(w http.ResponseWriter, req *http.Request) {
	message := s.ownedMessage(w, req)
	if message == nil {
		return
	}

	if err := query.DeleteMessage(s.db, message.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failureResponse(w, http.StatusNotFound, "Message not found")
			return
		}
		log.WithError(err).Error("could not delete message")
		failureResponse(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]string{"message": "Message deleted"})
}
