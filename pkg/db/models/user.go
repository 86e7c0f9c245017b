package models

// User owns messages. PasswordHash is empty for accounts created through the
// Google OAuth flow.
type User struct {
	Model

	Name         string `json:"name"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-"`

	// AvatarURL is the public path of the uploaded profile image, e.g.
	// /uploads/<file>. Empty when no image is set.
	AvatarURL string `json:"image"`
}
