package models

import "time"

// DocumentCounter is a named monotonically increasing integer, one row per
// document series. Created lazily with value 1 on first issuance; incremented
// by a single conditional UPDATE so two transactions can never observe the
// same value. Never decremented.
type DocumentCounter struct {
	Name      string    `gorm:"primaryKey;size:100" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
