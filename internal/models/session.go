package models

import "time"

type Session struct {
	ID        string      `json:"id"`
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}
