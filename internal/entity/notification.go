package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        string     `bun:"id,pk" json:"id"`
	UserID    string     `bun:"user_id,notnull" json:"userId"`
	Title     string     `bun:"title,notnull" json:"title"`
	Message   string     `bun:"message" json:"message"`
	Read      bool       `bun:"read,notnull,default:false" json:"read"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
	ExpiresAt *time.Time `bun:"expires_at" json:"expiresAt,omitempty"`
}
