package model

import "time"

type Sheet struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

type Topic struct {
	ID      int64  `json:"id"`
	SheetID int64  `json:"sheet_id"`
	Name    string `json:"name"`
}
