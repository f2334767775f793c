// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an operator account. SecretHash holds a bcrypt hash, never the
// plain secret.
type User struct {
	ID         string
	UserName   string
	SecretHash []byte
	CreatedAt  time.Time
}
