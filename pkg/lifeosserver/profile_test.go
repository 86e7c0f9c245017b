package lifeosserver

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/lifeos/lifeos/pkg/apis/config/v1"
	"github.com/lifeos/lifeos/pkg/db/models"
)

// uploadTestServer has a real uploads dir but still no database; every request
// in these tests must fail validation before a query or a file write happens.
func uploadTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		config: &v1.LifeOSConfig{
			Uploads: v1.UploadsConfig{Dir: t.TempDir(), MaxImageBytes: 5 * 1024 * 1024},
		},
	}
}

func profileRequest(t *testing.T, user *models.User, build func(*multipart.Writer)) *http.Request {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	build(form)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("PATCH", "/api/profile", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req.WithContext(context.WithValue(req.Context(), userContextKey, user))
}

func TestPatchProfileValidation(t *testing.T) {
	tests := map[string]struct {
		username string
		message  string
	}{
		"missing username":  {"", "Username is required"},
		"username too long": {strings.Repeat("x", maxUsernameLen+1), "50 characters or less"},
	}

	s := uploadTestServer(t)
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			user := &models.User{Name: "tester"}
			user.ID = uuid.New()
			req := profileRequest(t, user, func(form *multipart.Writer) {
				require.NoError(t, form.WriteField("username", tc.username))
			})

			rec := httptest.NewRecorder()
			s.patchProfile(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
		})
	}
}

func TestPatchProfileRejectsWrongImageType(t *testing.T) {
	s := uploadTestServer(t)
	user := &models.User{Name: "tester"}
	user.ID = uuid.New()

	req := profileRequest(t, user, func(form *multipart.Writer) {
		require.NoError(t, form.WriteField("username", "tester"))
		part, err := form.CreateFormFile("image", "notes.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("not an image"))
		require.NoError(t, err)
	})

	rec := httptest.NewRecorder()
	s.patchProfile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid image type")
}

// A broken upload is a 400 even when removeImage is also set; the existing
// avatar must survive the failed request.
func TestPatchProfileBadUploadDoesNotRemoveAvatar(t *testing.T) {
	s := uploadTestServer(t)

	avatarPath := filepath.Join(s.config.Uploads.Dir, "old.png")
	require.NoError(t, os.WriteFile(avatarPath, []byte("png bytes"), 0o644))

	user := &models.User{Name: "tester", AvatarURL: "/uploads/old.png"}
	user.ID = uuid.New()

	good := profileRequest(t, user, func(form *multipart.Writer) {
		require.NoError(t, form.WriteField("username", "tester"))
		require.NoError(t, form.WriteField("removeImage", "true"))
	})

	// Truncate the body mid-part so the form no longer parses.
	raw := new(bytes.Buffer)
	_, err := raw.ReadFrom(good.Body)
	require.NoError(t, err)
	broken := httptest.NewRequest("PATCH", "/api/profile", bytes.NewReader(raw.Bytes()[:raw.Len()/2]))
	broken.Header.Set("Content-Type", good.Header.Get("Content-Type"))
	broken = broken.WithContext(context.WithValue(broken.Context(), userContextKey, user))

	rec := httptest.NewRecorder()
	s.patchProfile(rec, broken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err = os.Stat(avatarPath)
	assert.NoError(t, err, "avatar should still exist after a failed request")
}
