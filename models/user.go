package models

import "time"

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"-" bson:"password"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	LastLogin     time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
}

// UserSummary is the slice of a user embedded in gig and bid responses.
type UserSummary struct {
	UserID string `json:"userid" bson:"userid"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{UserID: u.UserID, Name: u.Name, Email: u.Email}
}
