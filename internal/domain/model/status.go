package model

import (
	"fmt"
	"time"
)

type QuestionStatus string

const (
	StatusSaved  QuestionStatus = "SAVED"
	StatusSolved QuestionStatus = "SOLVED"
)

type UserQuestionStatus struct {
	UserID     string         `json:"user_id"`
	QuestionID int64          `json:"question_id"`
	Status     QuestionStatus `json:"status"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Action is the closed set of status mutations a user can request.
type Action int

const (
	ActionSolve Action = iota + 1
	ActionUnsolve
	ActionSave
	ActionUnsave
)

var actionNames = map[Action]string{
	ActionSolve:   "solve",
	ActionUnsolve: "unsolve",
	ActionSave:    "save",
	ActionUnsave:  "unsave",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps the wire value to an Action. The boolean is false for anything outside the set.
func ParseAction(s string) (Action, bool) {
	for a, name := range actionNames {
		if name == s {
			return a, true
		}
	}
	return 0, false
}
