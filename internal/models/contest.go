package models

import "time"

type Contest struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	CreatedBy   int       `db:"created_by" json:"created_by"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}
