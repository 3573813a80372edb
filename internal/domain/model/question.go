package model

import (
	"fmt"
	"strings"
)

type Difficulty string

const (
	DifficultyUnmarked Difficulty = "UNMARKED"
	DifficultyEasy     Difficulty = "EASY"
	DifficultyMedium   Difficulty = "MEDIUM"
	DifficultyHard     Difficulty = "HARD"
)

var difficultyPoints = map[Difficulty]int{
	DifficultyUnmarked: 10,
	DifficultyEasy:     5,
	DifficultyMedium:   10,
	DifficultyHard:     15,
}

// Points is the score awarded for solving a question of this difficulty.
// Unrecognised values score like UNMARKED.
func (d Difficulty) Points() int {
	if p, ok := difficultyPoints[d]; ok {
		return p
	}
	return difficultyPoints[DifficultyUnmarked]
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyPoints[d]
	return ok
}

// ParseDifficulty accepts any casing ("Easy", "easy", "EASY"). Unknown or empty input maps to UNMARKED.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	if d.Valid() {
		return d
	}
	return DifficultyUnmarked
}

type Question struct {
	ID         int64      `json:"id"`
	TopicID    int64      `json:"topic_id"`
	SheetID    int64      `json:"sheet_id"`
	Title      string     `json:"question"`
	Link       string     `json:"link"`
	Solution   *string    `json:"solution"`
	Platform   string     `json:"platform"`
	Difficulty Difficulty `json:"difficulty"`
}

func (q *Question) String() string {
	return fmt.Sprintf("%d:%s", q.ID, q.Title)
}
