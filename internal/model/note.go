package model

import "time"

// Note is a free-form entry ordered by priority. Priorities are dense: a new
// note gets max+1 and moving a note swaps priorities with its neighbor.
type Note struct {
	ID            ID     `gorm:"primaryKey" json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Priority      int    `gorm:"index" json:"priority"`
	NotifyEnabled bool   `gorm:"default:false" json:"notify_enabled"`
	// NotifyInterval is the reminder cadence in hours, 0 disables reminders.
	NotifyInterval int        `json:"notify_interval"`
	LastNotified   *time.Time `json:"last_notified,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
