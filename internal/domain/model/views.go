package model

// QuestionView is a question annotated with the caller's status flags.
type QuestionView struct {
	ID         int64      `json:"id"`
	Question   string     `json:"question"`
	Link       string     `json:"link"`
	Solution   *string    `json:"solution"`
	Platform   string     `json:"platform"`
	Difficulty Difficulty `json:"difficulty"`
	IsSaved    bool       `json:"is_saved"`
	IsSolved   bool       `json:"is_solved"`
}

func NewQuestionView(q Question, saved, solved bool) QuestionView {
	return QuestionView{
		ID:         q.ID,
		Question:   q.Title,
		Link:       q.Link,
		Solution:   q.Solution,
		Platform:   q.Platform,
		Difficulty: q.Difficulty,
		IsSaved:    saved,
		IsSolved:   solved,
	}
}

type TopicView struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Questions []QuestionView `json:"questions"`
}

type ProgressSummary struct {
	SolvedCount int `json:"solved_count"`
}

type SheetDetail struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	Image          *string          `json:"image"`
	Topics         []TopicView      `json:"topics"`
	UserProgress   *ProgressSummary `json:"user_progress"`
	TotalQuestions int              `json:"total_questions"`
}

// SavedQuestion is a saved question joined with its topic and sheet names.
type SavedQuestion struct {
	Question
	TopicName string
	SheetName string
}

type SavedGroup struct {
	TopicID   int64          `json:"topic_id"`
	TopicName string         `json:"topic_name"`
	SheetID   int64          `json:"sheet_id"`
	SheetName string         `json:"sheet_name"`
	Questions []QuestionView `json:"questions"`
}

type ProgressView struct {
	SolvedCount  int `json:"solved_count"`
	SolvedEasy   int `json:"solved_easy"`
	SolvedMedium int `json:"solved_medium"`
	SolvedHard   int `json:"solved_hard"`
	SheetTotals
}

type QuestionNoteView struct {
	ID          int64      `json:"id"`
	Question    string     `json:"question"`
	Link        string     `json:"link"`
	Difficulty  Difficulty `json:"difficulty"`
	Platform    string     `json:"platform"`
	NoteContent string     `json:"note_content"`
}

type TopicNotesView struct {
	TopicID   int64              `json:"topic_id"`
	TopicName string             `json:"topic_name"`
	Questions []QuestionNoteView `json:"questions"`
}

type SheetSummary struct {
	SheetID        int64  `json:"sheet_id"`
	SheetName      string `json:"sheet_name"`
	SolvedCount    int    `json:"solved_count"`
	TotalQuestions int    `json:"total_questions"`
}

type UserSummary struct {
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	Score       int            `json:"score"`
	Rank        string         `json:"rank"`
	MaxScore    int            `json:"max_score"`
	Sheets      []SheetSummary `json:"sheets"`
}

// StatusResult is what a status update leaves behind for the caller.
type StatusResult struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
	Rank    string `json:"rank"`
}

// PublicProfile is what anyone may see about a user. It leaves out email, role and account state.
type PublicProfile struct {
	Username      string  `json:"username"`
	DisplayName   string  `json:"display_name"`
	Tagline       *string `json:"tagline"`
	Pronouns      *string `json:"pronouns"`
	Location      *string `json:"location"`
	ProfilePhoto  *string `json:"profile_photo"`
	ProfileBanner *string `json:"profile_banner"`
	GitHub        *string `json:"github"`
	LinkedIn      *string `json:"linkedin"`
	Portfolio     *string `json:"portfolio"`
	Score         int     `json:"score"`
	Rank          string  `json:"rank"`
}

func NewPublicProfile(u *User) *PublicProfile {
	return &PublicProfile{
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		Tagline:       u.Tagline,
		Pronouns:      u.Pronouns,
		Location:      u.Location,
		ProfilePhoto:  u.ProfilePhoto,
		ProfileBanner: u.ProfileBanner,
		GitHub:        u.GitHub,
		LinkedIn:      u.LinkedIn,
		Portfolio:     u.Portfolio,
		Score:         u.Score,
		Rank:          u.Rank,
	}
}
