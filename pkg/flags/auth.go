package flags

import (
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// AuthFlags configures session tokens and the optional Google login.
type AuthFlags struct {
	JWTSecret          string
	SessionDuration    time.Duration
	GoogleClientID     string
	GoogleClientSecret string
}

func NewAuthFlags() *AuthFlags {
	return &AuthFlags{
		JWTSecret:          os.Getenv("LIFEOS_JWT_SECRET"),
		SessionDuration:    30 * 24 * time.Hour,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}
}

func (f *AuthFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.JWTSecret, "jwt-secret", f.JWTSecret, "Secret used to sign session tokens; falls back to LIFEOS_JWT_SECRET")
	fs.DurationVar(&f.SessionDuration, "session-duration", f.SessionDuration, "How long a session token stays valid")
	fs.StringVar(&f.GoogleClientID, "google-client-id", f.GoogleClientID, "OAuth client ID for Google login")
	fs.StringVar(&f.GoogleClientSecret, "google-client-secret", f.GoogleClientSecret, "OAuth client secret for Google login")
}

// GetGoogleOAuthConfig returns nil when Google login is not configured.
func (f *AuthFlags) GetGoogleOAuthConfig(baseURL string) *oauth2.Config {
	if f.GoogleClientID == "" || f.GoogleClientSecret == "" {
		return nil
	}

	return &oauth2.Config{
		ClientID:     f.GoogleClientID,
		ClientSecret: f.GoogleClientSecret,
		RedirectURL:  baseURL + "/api/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}
