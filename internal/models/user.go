package models

import "time"

// User is a registered account in the external auth store (counselors and
// registered clients). The coordination engine only ever reads users to
// resolve bearer tokens into participants; account management lives in the
// main application.
type User struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Username  string    `gorm:"size:100;not null" json:"username"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Participant converts a stored user into a connection participant.
func (u *User) Participant() *Participant {
	return &Participant{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Status:   StatusOnline,
	}
}
