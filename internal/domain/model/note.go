package model

import "time"

type UserNote struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"-"`
	QuestionID int64     `json:"question_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type MarkdownNote struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"-"`
	QuestionID int64     `json:"question_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
