// internal/models/user.go
package models

import "github.com/google/uuid"

// User is the externally owned account a player refers to. The game engine only reads it
// to resolve display names.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	IsEphemeral bool      `json:"is_ephemeral"`
}

// DisplayName returns the username, falling back to the email handle.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
