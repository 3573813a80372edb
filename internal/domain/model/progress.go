package model

type UserSheetProgress struct {
	UserID       string `json:"-"`
	SheetID      int64  `json:"sheet_id"`
	SolvedCount  int    `json:"solved_count"`
	SolvedEasy   int    `json:"solved_easy"`
	SolvedMedium int    `json:"solved_medium"`
	SolvedHard   int    `json:"solved_hard"`
}

// SheetTotals are read-time counts of a sheet's questions.
type SheetTotals struct {
	TotalQuestions int `json:"total_questions"`
	TotalEasy      int `json:"total_easy"`
	TotalMedium    int `json:"total_medium"`
	TotalHard      int `json:"total_hard"`
}
