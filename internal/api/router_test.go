package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common/security"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/rank"
	"dsa_arena/internal/domain/repository/memory"
	"dsa_arena/internal/platform/config"
	"dsa_arena/internal/platform/leetcode"
	"dsa_arena/internal/platform/llm"
	"dsa_arena/internal/platform/logger"
	"dsa_arena/internal/platform/storage"
)

type stubFetcher struct{}

func (stubFetcher) FetchProblem(ctx context.Context, slug string) (*leetcode.Problem, error) {
	if slug != "two-sum" {
		return nil, leetcode.ErrProblemNotFound
	}
	return &leetcode.Problem{
		Title:        "Two Sum",
		Content:      "<p>Find two numbers.</p>",
		CodeSnippets: []leetcode.CodeSnippet{{Lang: "C++", Code: "class Solution {};"}},
	}, nil
}

type stubStreamer struct{ deltas []string }

func (s stubStreamer) StreamChat(ctx context.Context, messages []llm.Message, onDelta func(string) error) error {
	for _, d := range s.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

type testEnv struct {
	t       *testing.T
	store   *memory.Store
	handler http.Handler
	sheet   *model.Sheet
	easy    *model.Question
	hard    *model.Question
	alice   *model.User
	admin   *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("router-secret"), JWTExp: time.Hour}
	security.InitJWT()

	ctx := context.Background()
	store := memory.NewStore()
	env := &testEnv{t: t, store: store}

	env.sheet = &model.Sheet{Name: "Blind 75", Slug: "blind-75"}
	if err := store.Sheets().CreateSheet(ctx, nil, env.sheet); err != nil {
		t.Fatal(err)
	}
	topic, err := store.Sheets().FindOrCreateTopic(ctx, nil, env.sheet.ID, "Arrays")
	if err != nil {
		t.Fatal(err)
	}
	env.easy = &model.Question{TopicID: topic.ID, Title: "Two Sum", Link: "https://leetcode.com/problems/two-sum/", Platform: "leetcode", Difficulty: model.DifficultyEasy}
	env.hard = &model.Question{TopicID: topic.ID, Title: "Trapping Rain Water", Link: "https://leetcode.com/problems/trapping-rain-water/", Platform: "leetcode", Difficulty: model.DifficultyHard}
	for _, q := range []*model.Question{env.easy, env.hard} {
		if _, err := store.Questions().CreateQuestion(ctx, nil, q); err != nil {
			t.Fatal(err)
		}
	}

	env.alice = env.addUser("alice", model.RoleUser)
	env.admin = env.addUser("root", model.RoleAdmin)

	log := logger.Nop()
	files := storage.NewLocalStorage(t.TempDir(), "/media/")
	profile := service.NewProfileService(store.Users(), files, log)
	notifications := service.NewNotificationService(noopPublisher{}, "admin@example.com", log)
	svc := Services{
		Auth:        service.NewAuthService(store, store.Users(), store.Progress(), notifications, false, log),
		Profile:     profile,
		Sheet:       service.NewSheetService(store.Sheets(), store.Questions(), store.Statuses(), store.Progress(), store.Users(), 1985),
		Status:      service.NewStatusService(store, store.Users(), store.Questions(), store.Statuses(), store.Progress(), 1985, log),
		Note:        service.NewNoteService(store.Notes(), store.Questions(), store.Sheets()),
		Explain:     service.NewExplainService(stubFetcher{}, stubStreamer{deltas: []string{"Hello", " world"}}, log),
		Leaderboard: service.NewLeaderboardService(store.Users()),
	}
	env.handler = NewRouter(svc, Options{MediaRoot: files.Root(), MediaURL: "/media/", MaxUploadMB: 1}, log)
	return env
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, n model.Notification) error { return nil }

func (e *testEnv) addUser(username, role string) *model.User {
	e.t.Helper()
	hash, err := security.HashPassword("password123")
	if err != nil {
		e.t.Fatal(err)
	}
	u := &model.User{
		ID:             username + "-id",
		Username:       username,
		Email:          username + "@example.com",
		DisplayName:    strings.ToUpper(username[:1]) + username[1:],
		HashedPassword: hash,
		Role:           role,
		Rank:           rank.Baseline,
		IsAccepted:     true,
		IsActive:       true,
	}
	if err := e.store.Users().Create(context.Background(), nil, u); err != nil {
		e.t.Fatal(err)
	}
	return u
}

func (e *testEnv) token(u *model.User) string {
	e.t.Helper()
	tok, err := security.GenerateToken(u.ID, u.Role)
	if err != nil {
		e.t.Fatal(err)
	}
	return tok
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegisterApproveLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/users/", "", map[string]string{
		"username": "bob", "display_name": "Bob", "email": "bob@example.com", "password": "longenough",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body=%s", rec.Code, rec.Body.String())
	}
	var reg struct {
		Message string            `json:"message"`
		User    map[string]string `json:"user"`
	}
	decode(t, rec, &reg)
	if reg.User["username"] != "bob" || reg.User["email"] != "bob@example.com" {
		t.Fatalf("register body = %+v", reg)
	}

	if rec := env.do(http.MethodPost, "/users/", "", map[string]string{
		"username": "bob", "display_name": "Bob", "email": "bob2@example.com", "password": "longenough",
	}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate username status = %d", rec.Code)
	}

	var exists struct {
		Exists bool `json:"exists"`
	}
	rec = env.do(http.MethodGet, "/users/check-username/?username=bob", "", nil)
	decode(t, rec, &exists)
	if !exists.Exists {
		t.Fatal("bob should exist")
	}
	if rec := env.do(http.MethodGet, "/users/check-email/", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing email status = %d", rec.Code)
	}

	login := map[string]string{"email": "bob@example.com", "password": "longenough"}
	rec = env.do(http.MethodPost, "/users/login/", "", login)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pending login status = %d", rec.Code)
	}
	var failed struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, rec, &failed)
	if failed.Success || failed.Message == "" {
		t.Fatalf("pending login body = %+v", failed)
	}

	bob, err := env.store.Users().FindByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	if rec := env.do(http.MethodPost, "/admin/users/"+bob.ID+"/accept/", env.token(env.alice), nil); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin accept status = %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/admin/users/"+bob.ID+"/accept/", env.token(env.admin), nil); rec.Code != http.StatusOK {
		t.Fatalf("admin accept status = %d body=%s", rec.Code, rec.Body.String())
	}

	if rec := env.do(http.MethodPost, "/users/login/", "", map[string]string{"email": "bob@example.com", "password": "wrongpass"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}
	rec = env.do(http.MethodPost, "/users/login/", "", login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body.String())
	}
	var ok struct {
		Success bool        `json:"success"`
		Token   string      `json:"token"`
		User    *model.User `json:"user"`
	}
	decode(t, rec, &ok)
	if !ok.Success || ok.Token == "" || ok.User == nil || ok.User.Username != "bob" {
		t.Fatalf("login body = %s", rec.Body.String())
	}
	if ok.User.ProfilePhoto == nil || !strings.HasPrefix(*ok.User.ProfilePhoto, "/media/profile_pics/") {
		t.Fatalf("photo = %v", ok.User.ProfilePhoto)
	}

	if rec := env.do(http.MethodGet, "/users/profile/", ok.Token, nil); rec.Code != http.StatusOK {
		t.Fatalf("own profile status = %d", rec.Code)
	}
}

func TestStatusUpdateFlow(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(env.alice)

	if rec := env.do(http.MethodPost, "/update-status/", "", map[string]interface{}{"question_id": env.easy.ID, "action": "solve"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/update-status/", tok, map[string]interface{}{"question_id": env.easy.ID, "action": "explode"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad action status = %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/update-status/", tok, map[string]interface{}{"question_id": env.easy.ID, "action": "solve", "email": "mallory@example.com"}); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign email status = %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/update-status/", tok, map[string]interface{}{"question_id": 999, "action": "solve"}); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown question status = %d", rec.Code)
	}

	for _, q := range []*model.Question{env.easy, env.hard} {
		rec := env.do(http.MethodPost, "/update-status/", tok, map[string]interface{}{"question_id": q.ID, "action": "solve", "email": "alice@example.com"})
		if rec.Code != http.StatusOK {
			t.Fatalf("solve status = %d body=%s", rec.Code, rec.Body.String())
		}
	}
	var result model.StatusResult
	rec := env.do(http.MethodPost, "/update-status/", tok, map[string]interface{}{"question_id": env.easy.ID, "action": "save"})
	decode(t, rec, &result)
	if result.Score != 20 || result.Rank != rank.Baseline || !strings.Contains(result.Message, "save") {
		t.Fatalf("save result = %+v", result)
	}

	var progress model.ProgressView
	rec = env.do(http.MethodGet, fmt.Sprintf("/progress/alice/%d/", env.sheet.ID), "", nil)
	decode(t, rec, &progress)
	if progress.SolvedCount != 2 || progress.SolvedEasy != 1 || progress.SolvedHard != 1 || progress.TotalQuestions != 2 {
		t.Fatalf("progress = %+v", progress)
	}
	if rec := env.do(http.MethodGet, fmt.Sprintf("/progress/nobody/%d/", env.sheet.ID), "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user progress status = %d", rec.Code)
	}

	var detail model.SheetDetail
	rec = env.do(http.MethodGet, fmt.Sprintf("/sheets/%d/", env.sheet.ID), tok, nil)
	decode(t, rec, &detail)
	if detail.UserProgress == nil || detail.UserProgress.SolvedCount != 2 || detail.TotalQuestions != 2 {
		t.Fatalf("detail = %+v", detail)
	}
	if q := detail.Topics[0].Questions[0]; !q.IsSolved || !q.IsSaved {
		t.Fatalf("flags for %q = saved %v solved %v", q.Question, q.IsSaved, q.IsSolved)
	}

	rec = env.do(http.MethodGet, fmt.Sprintf("/sheets/%d", env.sheet.ID), "not-a-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous detail status = %d", rec.Code)
	}
	detail = model.SheetDetail{}
	decode(t, rec, &detail)
	if detail.UserProgress != nil || detail.Topics[0].Questions[0].IsSolved {
		t.Fatalf("anonymous detail leaked user state: %+v", detail)
	}

	var groups []model.SavedGroup
	rec = env.do(http.MethodGet, "/saved/", tok, nil)
	decode(t, rec, &groups)
	if len(groups) != 1 || len(groups[0].Questions) != 1 || !groups[0].Questions[0].IsSolved {
		t.Fatalf("saved = %+v", groups)
	}

	var board []model.LeaderboardEntry
	rec = env.do(http.MethodGet, "/leaderboard/?limit=1", "", nil)
	decode(t, rec, &board)
	if len(board) != 1 || board[0].Username != "alice" || board[0].Score != 20 || board[0].Position != 1 {
		t.Fatalf("leaderboard = %+v", board)
	}

	var summary model.UserSummary
	rec = env.do(http.MethodGet, "/users/summary/alice/", "", nil)
	decode(t, rec, &summary)
	if summary.Score != 20 || summary.MaxScore != 1985 || len(summary.Sheets) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestNotesRoutes(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(env.alice)

	if rec := env.do(http.MethodPost, "/notes/", tok, map[string]interface{}{"question_id": env.easy.ID, "content": "   "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty note status = %d", rec.Code)
	}
	rec := env.do(http.MethodPost, "/notes/", tok, map[string]interface{}{"question_id": env.easy.ID, "content": "hashmap"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create note status = %d body=%s", rec.Code, rec.Body.String())
	}
	var note model.UserNote
	decode(t, rec, &note)

	var notes []model.UserNote
	rec = env.do(http.MethodGet, fmt.Sprintf("/notes/?question_id=%d", env.easy.ID), tok, nil)
	decode(t, rec, &notes)
	if len(notes) != 1 || notes[0].Content != "hashmap" {
		t.Fatalf("notes = %+v", notes)
	}

	if rec := env.do(http.MethodDelete, fmt.Sprintf("/notes/?id=%d", note.ID), env.token(env.admin), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d", rec.Code)
	}
	if rec := env.do(http.MethodDelete, fmt.Sprintf("/notes/?id=%d", note.ID), tok, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	body := map[string]interface{}{"question_id": env.hard.ID, "content": "# two pointers"}
	if rec := env.do(http.MethodPost, "/markdown-note/upsert/", tok, body); rec.Code != http.StatusCreated {
		t.Fatalf("first upsert status = %d", rec.Code)
	}
	body["content"] = "# stack"
	if rec := env.do(http.MethodPost, "/markdown-note/upsert/", tok, body); rec.Code != http.StatusOK {
		t.Fatalf("second upsert status = %d", rec.Code)
	}
	if n := env.store.MarkdownCount(); n != 1 {
		t.Fatalf("markdown rows = %d, want 1", n)
	}

	var view model.TopicNotesView
	rec = env.do(http.MethodPost, "/topic/questions-notes/", tok, map[string]interface{}{"topic_id": env.easy.TopicID})
	decode(t, rec, &view)
	if view.TopicName != "Arrays" || len(view.Questions) != 2 {
		t.Fatalf("topic notes = %+v", view)
	}
	for _, q := range view.Questions {
		if q.ID == env.hard.ID && q.NoteContent != "# stack" {
			t.Fatalf("note content = %q", q.NoteContent)
		}
	}
	if rec := env.do(http.MethodPost, "/topic/questions-notes/", tok, map[string]interface{}{"topic_id": 424242}); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown topic status = %d", rec.Code)
	}
}

func TestNotesRejectForeignUsername(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(env.alice)

	if rec := env.do(http.MethodPost, "/topic/questions-notes/", tok, map[string]interface{}{"topic_id": env.easy.TopicID, "username": "root"}); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign topic notes status = %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/markdown-note/upsert/", tok, map[string]interface{}{"question_id": env.hard.ID, "content": "x", "username": "root"}); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign upsert status = %d", rec.Code)
	}
	if n := env.store.MarkdownCount(); n != 0 {
		t.Fatalf("markdown rows = %d, want 0", n)
	}
	if rec := env.do(http.MethodPost, "/notes/", tok, map[string]interface{}{"question_id": env.easy.ID, "content": "x", "username": "root"}); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign note status = %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, fmt.Sprintf("/notes/?question_id=%d&username=root", env.easy.ID), tok, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign list status = %d", rec.Code)
	}

	if rec := env.do(http.MethodPost, "/topic/questions-notes/", tok, map[string]interface{}{"topic_id": env.easy.TopicID, "username": "alice"}); rec.Code != http.StatusOK {
		t.Fatalf("own topic notes status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := env.do(http.MethodPost, "/markdown-note/upsert/", tok, map[string]interface{}{"question_id": env.hard.ID, "content": "x", "username": "alice"}); rec.Code != http.StatusCreated {
		t.Fatalf("own upsert status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPublicProfileHidesAccountFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/users/profile/alice/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public profile status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Fatalf("email leaked: %s", rec.Body.String())
	}
	var body map[string]interface{}
	decode(t, rec, &body)
	for _, key := range []string{"email", "role", "is_accepted", "is_active", "id"} {
		if _, ok := body[key]; ok {
			t.Fatalf("public profile exposes %q: %s", key, rec.Body.String())
		}
	}
	if body["username"] != "alice" {
		t.Fatalf("username = %v", body["username"])
	}

	if rec := env.do(http.MethodGet, "/users/profile/nobody/", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown profile status = %d", rec.Code)
	}
}

func TestExplainStreams(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(env.alice)

	rec := env.do(http.MethodPost, "/ai-explain/", tok, map[string]string{"slug": "no-such-problem"})
	if rec.Code != http.StatusNotFound || !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("missing problem: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = env.do(http.MethodPost, "/ai-explain/", tok, map[string]string{"slug": "two-sum", "lang": "C++"})
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("stream: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	var events []model.StreamEnvelope
	for _, chunk := range strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n") {
		var ev model.StreamEnvelope
		if err := json.Unmarshal([]byte(strings.TrimPrefix(chunk, "data: ")), &ev); err != nil {
			t.Fatalf("event %q: %v", chunk, err)
		}
		events = append(events, ev)
	}
	want := []model.StreamEnvelope{
		model.ContentEnvelope("Hello"),
		model.ContentEnvelope(" world"),
		model.CompleteEnvelope(),
	}
	if len(events) != len(want) {
		t.Fatalf("events = %+v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestUpdatePhoto(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "me.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("\x89PNG fake"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/users/update-photo/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token(env.alice))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d body=%s", rec.Code, rec.Body.String())
	}
	var user model.User
	decode(t, rec, &user)
	if user.ProfilePhoto == nil || !strings.HasPrefix(*user.ProfilePhoto, "/media/profile_pics/") {
		t.Fatalf("photo = %v", user.ProfilePhoto)
	}

	served := env.do(http.MethodGet, *user.ProfilePhoto, "", nil)
	if served.Code != http.StatusOK || served.Body.String() != "\x89PNG fake" {
		t.Fatalf("media route: %d %q", served.Code, served.Body.String())
	}
}
