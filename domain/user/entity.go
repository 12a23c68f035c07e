package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Name         string    `gorm:"not null;type:text" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null;type:text" json:"email"`
	PasswordHash string    `gorm:"not null;type:text" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Summary returns the outward projection of the user.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Summary is the part of a user that other users may see.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Actor identifies who performed a mutation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TokenPair is returned on successful login or registration.
type TokenPair struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
	TokenType   string `json:"tokenType"`
}
