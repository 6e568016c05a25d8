package model

import "time"

// Settings is the single-row application configuration record.
type Settings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AccessCodeHash string    `json:"-"`
	HourlyReport   bool      `gorm:"default:false" json:"hourly_report"`
	UpdatedAt      time.Time `json:"updated_at"`
}
