// Package memory holds in-process implementations of the repository interfaces.
// They back the service and handler tests and local runs without Postgres.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/repository"
)

type statusKey struct {
	userID     string
	questionID int64
	status     model.QuestionStatus
}

type progressKey struct {
	userID  string
	sheetID int64
}

type markdownKey struct {
	userID     string
	questionID int64
}

// Store is a single in-memory dataset shared by all repositories it hands out.
type Store struct {
	txMu sync.Mutex // serializes WithinTx callers, standing in for row locks
	mu   sync.RWMutex

	nextID int64
	now    func() time.Time

	users     map[string]*model.User
	sheets    map[int64]*model.Sheet
	topics    map[int64]*model.Topic
	questions map[int64]*model.Question
	statuses  map[statusKey]time.Time
	progress  map[progressKey]*model.UserSheetProgress
	notes     map[int64]*model.UserNote
	markdown  map[markdownKey]*model.MarkdownNote
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[string]*model.User),
		sheets:    make(map[int64]*model.Sheet),
		topics:    make(map[int64]*model.Topic),
		questions: make(map[int64]*model.Question),
		statuses:  make(map[statusKey]time.Time),
		progress:  make(map[progressKey]*model.UserSheetProgress),
		notes:     make(map[int64]*model.UserNote),
		markdown:  make(map[markdownKey]*model.MarkdownNote),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// tick returns a strictly increasing timestamp so ordering by time is deterministic.
func (s *Store) tick() time.Time {
	return s.now().Add(time.Duration(s.nextID) * time.Microsecond)
}

// WithinTx runs fn with other transactions excluded and restores every table if fn fails.
// IDs handed out inside a failed transaction are not reused, matching Postgres sequences.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type tables struct {
	users     map[string]*model.User
	sheets    map[int64]*model.Sheet
	topics    map[int64]*model.Topic
	questions map[int64]*model.Question
	statuses  map[statusKey]time.Time
	progress  map[progressKey]*model.UserSheetProgress
	notes     map[int64]*model.UserNote
	markdown  map[markdownKey]*model.MarkdownNote
}

func cloneRows[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (s *Store) snapshot() tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	statuses := make(map[statusKey]time.Time, len(s.statuses))
	for k, v := range s.statuses {
		statuses[k] = v
	}
	return tables{
		users:     cloneRows(s.users),
		sheets:    cloneRows(s.sheets),
		topics:    cloneRows(s.topics),
		questions: cloneRows(s.questions),
		statuses:  statuses,
		progress:  cloneRows(s.progress),
		notes:     cloneRows(s.notes),
		markdown:  cloneRows(s.markdown),
	}
}

func (s *Store) restore(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.sheets, s.topics, s.questions = t.users, t.sheets, t.topics, t.questions
	s.statuses, s.progress, s.notes, s.markdown = t.statuses, t.progress, t.notes, t.markdown
}

func (s *Store) Users() repository.UserRepository         { return &userRepo{s} }
func (s *Store) Sheets() repository.SheetRepository       { return &sheetRepo{s} }
func (s *Store) Questions() repository.QuestionRepository { return &questionRepo{s} }
func (s *Store) Statuses() repository.StatusRepository    { return &statusRepo{s} }
func (s *Store) Progress() repository.ProgressRepository  { return &progressRepo{s} }
func (s *Store) Notes() repository.NoteRepository         { return &noteRepo{s} }

// ---- users ----

type userRepo struct{ *Store }

func (r *userRepo) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("user id already exists: %w", common.ErrConflict)
	}
	user.CreatedAt = r.tick()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *userRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", common.ErrNotFound)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *userRepo) LockByID(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	return r.FindByID(ctx, id)
}

func (r *userRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepo) mutate(id string, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user: %w", common.ErrNotFound)
	}
	fn(u)
	u.UpdatedAt = r.tick()
	return nil
}

func (r *userRepo) UpdateScore(ctx context.Context, tx *sql.Tx, id string, score int, rank string) error {
	return r.mutate(id, func(u *model.User) { u.Score, u.Rank = score, rank })
}

func (r *userRepo) UpdateProfileInfo(ctx context.Context, id string, info model.ProfileInfo) error {
	return r.mutate(id, func(u *model.User) {
		u.DisplayName, u.Tagline, u.Pronouns, u.Location = info.DisplayName, info.Tagline, info.Pronouns, info.Location
	})
}

func (r *userRepo) UpdateSocialLinks(ctx context.Context, id string, links model.SocialLinks) error {
	return r.mutate(id, func(u *model.User) { u.GitHub, u.LinkedIn, u.Portfolio = links.GitHub, links.LinkedIn, links.Portfolio })
}

func (r *userRepo) UpdatePhoto(ctx context.Context, id, path string) error {
	return r.mutate(id, func(u *model.User) { u.ProfilePhoto = &path })
}

func (r *userRepo) UpdateBanner(ctx context.Context, id, path string) error {
	return r.mutate(id, func(u *model.User) { u.ProfileBanner = &path })
}

func (r *userRepo) Accept(ctx context.Context, id string) error {
	return r.mutate(id, func(u *model.User) { u.IsAccepted = true })
}

func (r *userRepo) TopByScore(ctx context.Context, limit int) ([]model.User, error) {
	r.mu.RLock()
	var out []model.User
	for _, u := range r.users {
		if u.IsAccepted && u.IsActive {
			out = append(out, *u)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- sheets & topics ----

type sheetRepo struct{ *Store }

func (r *sheetRepo) CreateSheet(ctx context.Context, tx *sql.Tx, sheet *model.Sheet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sheets {
		if s.Name == sheet.Name {
			return fmt.Errorf("sheet %q already exists: %w", sheet.Name, common.ErrConflict)
		}
	}
	sheet.ID = r.id()
	sheet.CreatedAt = r.tick()
	cp := *sheet
	r.sheets[sheet.ID] = &cp
	return nil
}

func (r *sheetRepo) FindSheetByID(ctx context.Context, id int64) (*model.Sheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sheets[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("sheet: %w", common.ErrNotFound)
}

func (r *sheetRepo) FindSheetByName(ctx context.Context, tx *sql.Tx, name string) (*model.Sheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sheets {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("sheet: %w", common.ErrNotFound)
}

func (r *sheetRepo) ListSheets(ctx context.Context) ([]model.Sheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Sheet
	for _, s := range r.sheets {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *sheetRepo) DeleteSheet(ctx context.Context, tx *sql.Tx, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sheets, id)
	for tid, t := range r.topics {
		if t.SheetID == id {
			delete(r.topics, tid)
		}
	}
	for qid, q := range r.questions {
		if q.SheetID != id {
			continue
		}
		delete(r.questions, qid)
		for k := range r.statuses {
			if k.questionID == qid {
				delete(r.statuses, k)
			}
		}
		for nid, n := range r.notes {
			if n.QuestionID == qid {
				delete(r.notes, nid)
			}
		}
		for k := range r.markdown {
			if k.questionID == qid {
				delete(r.markdown, k)
			}
		}
	}
	for k := range r.progress {
		if k.sheetID == id {
			delete(r.progress, k)
		}
	}
	return nil
}

func (r *sheetRepo) FindOrCreateTopic(ctx context.Context, tx *sql.Tx, sheetID int64, name string) (*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.topics {
		if t.SheetID == sheetID && t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	if _, ok := r.sheets[sheetID]; !ok {
		return nil, fmt.Errorf("sheet: %w", common.ErrNotFound)
	}
	t := &model.Topic{ID: r.id(), SheetID: sheetID, Name: name}
	r.topics[t.ID] = t
	cp := *t
	return &cp, nil
}

func (r *sheetRepo) FindTopicByID(ctx context.Context, id int64) (*model.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.topics[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, fmt.Errorf("topic: %w", common.ErrNotFound)
}

func (r *sheetRepo) ListTopics(ctx context.Context, sheetID int64) ([]model.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Topic
	for _, t := range r.topics {
		if t.SheetID == sheetID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *sheetRepo) SheetTotals(ctx context.Context, sheetID int64) (model.SheetTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var t model.SheetTotals
	for _, q := range r.questions {
		if q.SheetID != sheetID {
			continue
		}
		t.TotalQuestions++
		switch q.Difficulty {
		case model.DifficultyEasy:
			t.TotalEasy++
		case model.DifficultyMedium:
			t.TotalMedium++
		case model.DifficultyHard:
			t.TotalHard++
		}
	}
	return t, nil
}

// ---- questions ----

type questionRepo struct{ *Store }

func (r *questionRepo) CreateQuestion(ctx context.Context, tx *sql.Tx, q *model.Question) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	topic, ok := r.topics[q.TopicID]
	if !ok {
		return false, fmt.Errorf("topic: %w", common.ErrNotFound)
	}
	for _, existing := range r.questions {
		if existing.TopicID == q.TopicID && existing.Title == q.Title {
			return false, nil
		}
	}
	q.ID = r.id()
	q.SheetID = topic.SheetID
	cp := *q
	r.questions[q.ID] = &cp
	return true, nil
}

func (r *questionRepo) FindQuestionByID(ctx context.Context, id int64) (*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if q, ok := r.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, fmt.Errorf("question: %w", common.ErrNotFound)
}

func (r *questionRepo) list(match func(*model.Question) bool) []model.Question {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Question
	for _, q := range r.questions {
		if match(q) {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TopicID != out[j].TopicID {
			return out[i].TopicID < out[j].TopicID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *questionRepo) ListByTopic(ctx context.Context, topicID int64) ([]model.Question, error) {
	return r.list(func(q *model.Question) bool { return q.TopicID == topicID }), nil
}

func (r *questionRepo) ListBySheet(ctx context.Context, sheetID int64) ([]model.Question, error) {
	return r.list(func(q *model.Question) bool { return q.SheetID == sheetID }), nil
}

// ---- statuses ----

type statusRepo struct{ *Store }

func (r *statusRepo) Insert(ctx context.Context, tx *sql.Tx, userID string, questionID int64, status model.QuestionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := statusKey{userID, questionID, status}
	if _, ok := r.statuses[k]; ok {
		return false, nil
	}
	r.statuses[k] = r.tick()
	return true, nil
}

func (r *statusRepo) Delete(ctx context.Context, tx *sql.Tx, userID string, questionID int64, status model.QuestionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := statusKey{userID, questionID, status}
	if _, ok := r.statuses[k]; !ok {
		return false, nil
	}
	delete(r.statuses, k)
	return true, nil
}

func (r *statusRepo) Has(ctx context.Context, userID string, questionID int64, status model.QuestionStatus) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.statuses[statusKey{userID, questionID, status}]
	return ok, nil
}

func (r *statusRepo) QuestionIDs(ctx context.Context, userID string, sheetID int64, status model.QuestionStatus) (map[int64]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[int64]bool)
	for k := range r.statuses {
		if k.userID != userID || k.status != status {
			continue
		}
		if q, ok := r.questions[k.questionID]; ok && q.SheetID == sheetID {
			ids[k.questionID] = true
		}
	}
	return ids, nil
}

func (r *statusRepo) ListSaved(ctx context.Context, userID string) ([]model.SavedQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.SavedQuestion
	for k := range r.statuses {
		if k.userID != userID || k.status != model.StatusSaved {
			continue
		}
		q, ok := r.questions[k.questionID]
		if !ok {
			continue
		}
		sq := model.SavedQuestion{Question: *q}
		if t, ok := r.topics[q.TopicID]; ok {
			sq.TopicName = t.Name
		}
		if s, ok := r.sheets[q.SheetID]; ok {
			sq.SheetName = s.Name
		}
		out = append(out, sq)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SheetID != b.SheetID {
			return a.SheetID < b.SheetID
		}
		if a.TopicID != b.TopicID {
			return a.TopicID < b.TopicID
		}
		return a.ID < b.ID
	})
	return out, nil
}

// ---- progress ----

type progressRepo struct{ *Store }

func (r *progressRepo) Find(ctx context.Context, userID string, sheetID int64) (*model.UserSheetProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.progress[progressKey{userID, sheetID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("progress: %w", common.ErrNotFound)
}

func (r *progressRepo) ListForUser(ctx context.Context, userID string) ([]model.UserSheetProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.UserSheetProgress
	for k, p := range r.progress {
		if k.userID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SheetID < out[j].SheetID })
	return out, nil
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (r *progressRepo) Increment(ctx context.Context, tx *sql.Tx, userID string, sheetID int64, d model.Difficulty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := progressKey{userID, sheetID}
	p, ok := r.progress[k]
	if !ok {
		p = &model.UserSheetProgress{UserID: userID, SheetID: sheetID}
		r.progress[k] = p
	}
	p.SolvedCount++
	switch d {
	case model.DifficultyEasy:
		p.SolvedEasy++
	case model.DifficultyMedium:
		p.SolvedMedium++
	case model.DifficultyHard:
		p.SolvedHard++
	}
	return nil
}

func (r *progressRepo) Decrement(ctx context.Context, tx *sql.Tx, userID string, sheetID int64, d model.Difficulty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[progressKey{userID, sheetID}]
	if !ok {
		return nil
	}
	p.SolvedCount = floorZero(p.SolvedCount - 1)
	switch d {
	case model.DifficultyEasy:
		p.SolvedEasy = floorZero(p.SolvedEasy - 1)
	case model.DifficultyMedium:
		p.SolvedMedium = floorZero(p.SolvedMedium - 1)
	case model.DifficultyHard:
		p.SolvedHard = floorZero(p.SolvedHard - 1)
	}
	return nil
}

func (r *progressRepo) primeLocked(userID string) int64 {
	var n int64
	for sheetID := range r.sheets {
		k := progressKey{userID, sheetID}
		if _, ok := r.progress[k]; !ok {
			r.progress[k] = &model.UserSheetProgress{UserID: userID, SheetID: sheetID}
			n++
		}
	}
	return n
}

func (r *progressRepo) PrimeUser(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.primeLocked(userID), nil
}

func (r *progressRepo) PrimeAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id := range r.users {
		n += r.primeLocked(id)
	}
	return n, nil
}

// ---- notes ----

type noteRepo struct{ *Store }

func (r *noteRepo) CreateNote(ctx context.Context, note *model.UserNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	note.ID = r.id()
	note.CreatedAt = r.tick()
	cp := *note
	r.notes[note.ID] = &cp
	return nil
}

func (r *noteRepo) ListNotes(ctx context.Context, userID string, questionID int64) ([]model.UserNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.UserNote{}
	for _, n := range r.notes {
		if n.UserID == userID && n.QuestionID == questionID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *noteRepo) DeleteNote(ctx context.Context, userID string, noteID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[noteID]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(r.notes, noteID)
	return true, nil
}

func (r *noteRepo) UpsertMarkdown(ctx context.Context, userID string, questionID int64, content string) (*model.MarkdownNote, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := markdownKey{userID, questionID}
	if n, ok := r.markdown[k]; ok {
		n.Content = content
		n.UpdatedAt = r.tick()
		cp := *n
		return &cp, false, nil
	}
	n := &model.MarkdownNote{ID: r.id(), UserID: userID, QuestionID: questionID, Content: content}
	n.CreatedAt = r.tick()
	n.UpdatedAt = n.CreatedAt
	r.markdown[k] = n
	cp := *n
	return &cp, true, nil
}

func (r *noteRepo) MarkdownForTopic(ctx context.Context, userID string, topicID int64) (map[int64]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]string)
	for k, n := range r.markdown {
		if k.userID != userID {
			continue
		}
		if q, ok := r.questions[k.questionID]; ok && q.TopicID == topicID {
			out[k.questionID] = n.Content
		}
	}
	return out, nil
}

// MarkdownCount reports how many markdown notes exist; tests use it to check upsert uniqueness.
func (s *Store) MarkdownCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markdown)
}

// StatusCount reports how many status rows the user holds with the given status.
func (s *Store) StatusCount(userID string, status model.QuestionStatus) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.statuses {
		if k.userID == userID && k.status == status {
			n++
		}
	}
	return n
}
