package lifeosserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/lifeos/lifeos/pkg/api"
	"github.com/lifeos/lifeos/pkg/db/models"
)

const (
	sessionCookie    = "lifeos_session"
	oauthStateCookie = "lifeos_oauth_state"

	maxUsernameLen = 50
	minPasswordLen = 8
)

type contextKey int

const userContextKey contextKey = iota

// TokenManager signs and verifies session tokens.
type TokenManager struct {
	secret   []byte
	duration time.Duration
}

func NewTokenManager(secret string, duration time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("a JWT secret is required, set LIFEOS_JWT_SECRET")
	}
	return &TokenManager{secret: []byte(secret), duration: duration}, nil
}

// Issue returns a signed token whose subject is the user ID.
func (t *TokenManager) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
	})
	return token.SignedString(t.secret)
}

// Verify parses a token and returns the user ID it was issued for.
func (t *TokenManager) Verify(raw string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, errors.New("token has no subject")
	}
	return uuid.Parse(claims.Subject)
}

// requireSession authenticates the request and stores the user on the request
// context. Authorization failures are uniformly 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		raw := tokenFromRequest(req)
		if raw == "" {
			failureResponse(w, http.StatusUnauthorized, "User authentication required")
			return
		}

		userID, err := s.auth.Verify(raw)
		if err != nil {
			log.WithError(err).Debug("rejected session token")
			failureResponse(w, http.StatusUnauthorized, "User authentication required")
			return
		}

		var user models.User
		if err := s.db.DB.First(&user, "id = ?", userID).Error; err != nil {
			failureResponse(w, http.StatusUnauthorized, "User authentication required")
			return
		}

		ctx := context.WithValue(req.Context(), userContextKey, &user)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// currentUser returns the user placed on the context by requireSession.
func currentUser(req *http.Request) *models.User {
	user, _ := req.Context().Value(userContextKey).(*models.User)
	return user
}

func tokenFromRequest(req *http.Request) string {
	if header := req.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := req.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) jsonRegister(w http.ResponseWriter, req *http.Request) {
	var request registerRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	request.Username = strings.TrimSpace(request.Username)
	request.Email = strings.TrimSpace(strings.ToLower(request.Email))
	switch {
	case request.Username == "" || request.Email == "" || request.Password == "":
		failureResponse(w, http.StatusBadRequest, "username, email and password are required")
		return
	case len(request.Username) > maxUsernameLen:
		failureResponse(w, http.StatusBadRequest, "username is too long")
		return
	case len(request.Password) < minPasswordLen:
		failureResponse(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	case !strings.Contains(request.Email, "@"):
		failureResponse(w, http.StatusBadRequest, "invalid email address")
		return
	}

	var existing models.User
	if err := s.db.DB.First(&existing, "email = ?", request.Email).Error; err == nil {
		failureResponse(w, http.StatusBadRequest, "Email is already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.WithError(err).Error("could not check for existing user")
		failureResponse(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("could not hash password")
		failureResponse(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user := models.User{
		Name:         request.Username,
		Email:        request.Email,
		PasswordHash: string(hash),
	}
	if err := s.db.DB.Create(&user).Error; err != nil {
		log.WithError(err).Error("could not create user")
		failureResponse(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	log.WithField("userID", user.ID).Info("user registered")
	api.RespondWithJSON(http.StatusCreated, w, map[string]string{"message": "User registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) jsonLogin(w http.ResponseWriter, req *http.Request) {
	var request loginRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if request.Email == "" || request.Password == "" {
		failureResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var user models.User
	err := s.db.DB.First(&user, "email = ?", strings.ToLower(request.Email)).Error
	if err != nil || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)) != nil {
		failureResponse(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	s.respondWithSession(w, &user)
}

func (s *Server) jsonCurrentUser(w http.ResponseWriter, req *http.Request) {
	api.RespondWithJSON(http.StatusOK, w, currentUser(req))
}

func (s *Server) respondWithSession(w http.ResponseWriter, user *models.User) {
	token, err := s.auth.Issue(user.ID)
	if err != nil {
		log.WithError(err).Error("could not sign session token")
		failureResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	api.RespondWithJSON(http.StatusOK, w, sessionResponse{Token: token, User: user})
}

// googleUser is the subset of the userinfo endpoint's answer we use.
type googleUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *Server) googleLogin(w http.ResponseWriter, req *http.Request) {
	state, err := randomState()
	if err != nil {
		failureResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, req, s.googleOAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (s *Server) googleCallback(w http.ResponseWriter, req *http.Request) {
	stateCookie, err := req.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || req.URL.Query().Get("state") != stateCookie.Value {
		failureResponse(w, http.StatusUnauthorized, "OAuth state mismatch")
		return
	}

	code := req.URL.Query().Get("code")
	if code == "" {
		failureResponse(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := s.googleOAuth.Exchange(req.Context(), code)
	if err != nil {
		log.WithError(err).Error("google code exchange failed")
		failureResponse(w, http.StatusUnauthorized, "Login failed")
		return
	}

	info, err := s.fetchGoogleUser(req.Context(), s.googleOAuth, token)
	if err != nil || info.Email == "" {
		log.WithError(err).Error("could not fetch google user info")
		failureResponse(w, http.StatusUnauthorized, "Login failed")
		return
	}

	user := models.User{
		Name:      info.Name,
		Email:     strings.ToLower(info.Email),
		AvatarURL: info.Picture,
	}
	// Re-login keeps the existing account; the name and avatar follow Google.
	err = s.db.DB.Where("email = ?", user.Email).
		Assign(models.User{Name: user.Name, AvatarURL: user.AvatarURL}).
		FirstOrCreate(&user).Error
	if err != nil {
		log.WithError(err).Error("could not upsert google user")
		failureResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	s.respondWithSession(w, &user)
}

func googleUserInfo(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*googleUser, error) {
	client := config.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info googleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
