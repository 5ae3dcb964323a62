package models

import "time"

// Session is the durable marker that Email is signed in. Token is the
// signed form of the same facts and is checked on restore.
type Session struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issuedAt"`
	Token    string    `json:"token"`
}
