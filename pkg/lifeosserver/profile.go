package lifeosserver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/api"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func (s *Server) jsonGetProfile(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)
	api.RespondWithJSON(http.StatusOK, w, map[string]string{
		"name":  user.Name,
		"image": user.AvatarURL,
	})
}

// patchProfile updates the display name and optionally replaces or removes the
// avatar image. The request is a multipart form with fields username, image
// and removeImage.
func (s *Server) patchProfile(w http.ResponseWriter, req *http.Request) {
	user := currentUser(req)

	maxBytes := s.config.Uploads.MaxImageBytes
	req.Body = http.MaxBytesReader(w, req.Body, maxBytes+64*1024)
	if err := req.ParseMultipartForm(maxBytes); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	username := strings.TrimSpace(req.FormValue("username"))
	if username == "" {
		failureResponse(w, http.StatusBadRequest, "Username is required")
		return
	}
	if len(username) > maxUsernameLen {
		failureResponse(w, http.StatusBadRequest, "Username must be 50 characters or less")
		return
	}

	avatarURL := user.AvatarURL

	file, header, err := req.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()

		if header.Size > maxBytes {
			failureResponse(w, http.StatusBadRequest, "Image must be less than 5MB")
			return
		}
		extension, ok := allowedImageTypes[header.Header.Get("Content-Type")]
		if !ok {
			failureResponse(w, http.StatusBadRequest, "Invalid image type. Only JPEG, PNG, and WEBP are allowed.")
			return
		}

		fileName := fmt.Sprintf("%s-%d%s", user.ID, time.Now().UnixMilli(), extension)
		if err := s.saveUpload(file, fileName); err != nil {
			log.WithError(err).Error("could not save profile image")
			failureResponse(w, http.StatusInternalServerError, "An error occurred while updating your profile")
			return
		}

		s.removeUpload(user.AvatarURL)
		avatarURL = "/uploads/" + fileName
	case err != http.ErrMissingFile:
		failureResponse(w, http.StatusBadRequest, "Invalid image upload")
		return
	case req.FormValue("removeImage") == "true":
		s.removeUpload(user.AvatarURL)
		avatarURL = ""
	}

	updates := map[string]interface{}{"name": username, "avatar_url": avatarURL}
	if err := s.db.DB.Model(user).Updates(updates).Error; err != nil {
		log.WithError(err).Error("could not update profile")
		failureResponse(w, http.StatusInternalServerError, "An error occurred while updating your profile")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"message": "Profile updated successfully",
		"user": map[string]string{
			"name":  username,
			"image": avatarURL,
		},
	})
}

func (s *Server) saveUpload(file io.Reader, fileName string) error {
	dir := s.config.Uploads.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	out, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, file)
	return err
}

// removeUpload best-effort deletes a previously uploaded avatar. External
// URLs, e.g. Google profile pictures, are left alone.
func (s *Server) removeUpload(avatarURL string) {
	if !strings.HasPrefix(avatarURL, "/uploads/") {
		return
	}

	fileName := filepath.Base(avatarURL)
	if err := os.Remove(filepath.Join(s.config.Uploads.Dir, fileName)); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not delete old profile image")
	}
}
