package models

import "time"

// Setting is one row of the operator-editable key/value configuration
// store (sender profile, SMTP credentials, SendGrid key, email tone, ...).
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
