package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dsa_arena/internal/common"
	"dsa_arena/internal/common/security"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/rank"
	"dsa_arena/internal/platform/config"
	"dsa_arena/internal/platform/logger"
)

func initTestJWT() {
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()
}

func newAuthService(f *fixture, pub *fakePublisher, prime bool) *AuthService {
	notes := NewNotificationService(pub, "admin@example.com", logger.Nop())
	return NewAuthService(f.store, f.store.Users(), f.store.Progress(), notes, prime, logger.Nop())
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	initTestJWT()
	f := newFixture(t)
	pub := &fakePublisher{}
	svc := newAuthService(f, pub, false)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: "carol", DisplayName: "Carol", Email: "Carol@Example.com", Password: "s3cretpass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.IsAccepted || u.Score != 0 || u.Rank != rank.Baseline || u.Email != "carol@example.com" || u.HashedPassword != "" {
		t.Fatalf("user = %+v", u)
	}
	if u.ProfilePhoto == nil || !IsDefaultAsset(*u.ProfilePhoto) || !strings.HasPrefix(*u.ProfilePhoto, "profile_pics/") {
		t.Fatalf("photo = %v", u.ProfilePhoto)
	}
	if u.ProfileBanner == nil || !IsDefaultAsset(*u.ProfileBanner) || !strings.HasPrefix(*u.ProfileBanner, "profile_banner/") {
		t.Fatalf("banner = %v", u.ProfileBanner)
	}
	if len(pub.sent) != 1 || pub.sent[0].Kind != model.NotificationRegistrationRequest || pub.sent[0].To != "admin@example.com" || pub.sent[0].ID == "" {
		t.Fatalf("notifications = %+v", pub.sent)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "carol@example.com", Password: "s3cretpass"})
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("pending login err = %v, want ErrForbidden", err)
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	initTestJWT()
	f := newFixture(t)
	svc := newAuthService(f, &fakePublisher{}, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "x", DisplayName: "X", Email: "not-an-email", Password: "short"})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", DisplayName: "A", Email: "other@example.com", Password: "longenough"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("duplicate username err = %v, want ErrConflict", err)
	}
}

func TestRegisterSurvivesQueueFailure(t *testing.T) {
	initTestJWT()
	f := newFixture(t)
	svc := newAuthService(f, &fakePublisher{err: errors.New("redis down")}, false)
	if _, err := svc.Register(context.Background(), RegisterRequest{Username: "dan", DisplayName: "Dan", Email: "dan@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register should not fail on enqueue error: %v", err)
	}
}

func TestRegisterPrimesProgress(t *testing.T) {
	initTestJWT()
	f := newFixture(t)
	svc := newAuthService(f, &fakePublisher{}, true)
	u, err := svc.Register(context.Background(), RegisterRequest{Username: "erin", DisplayName: "Erin", Email: "erin@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	p, err := f.store.Progress().Find(context.Background(), u.ID, f.sheet.ID)
	if err != nil || p.SolvedCount != 0 {
		t.Fatalf("primed progress = %+v, %v", p, err)
	}
}

func TestLoginFlow(t *testing.T) {
	initTestJWT()
	f := newFixture(t)
	pub := &fakePublisher{}
	svc := newAuthService(f, pub, false)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Username: "frank", DisplayName: "Frank", Email: "frank@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "", Password: "x"}); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("missing email err = %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "frank@example.com", Password: "wrong-pass"}); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password1"}); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("unknown email err = %v", err)
	}

	if _, err := svc.Accept(ctx, u.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	last := pub.sent[len(pub.sent)-1]
	if last.Kind != model.NotificationAccountApproved || last.To != "frank@example.com" {
		t.Fatalf("approval notification = %+v", last)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: " FRANK@example.com ", Password: "password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" || resp.User.ID != u.ID || resp.User.HashedPassword != "" {
		t.Fatalf("login response = %+v", resp)
	}

	if _, err := svc.Accept(ctx, "ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("accept unknown err = %v", err)
	}
}

func TestExistenceChecks(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, &fakePublisher{}, false)
	ctx := context.Background()

	if ok, err := svc.UsernameExists(ctx, "alice"); err != nil || !ok {
		t.Fatalf("alice exists = %v, %v", ok, err)
	}
	if ok, _ := svc.UsernameExists(ctx, "zed"); ok {
		t.Fatal("zed should not exist")
	}
	if ok, _ := svc.EmailExists(ctx, "ALICE@example.com"); !ok {
		t.Fatal("email check should be case-insensitive")
	}
	if _, err := svc.EmailExists(ctx, " "); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("blank email err = %v", err)
	}
}

func TestIsDefaultAsset(t *testing.T) {
	for _, p := range []string{"profile_pics/1.jpg", "profile_pics/10.jpg", "profile_banner/3.jpg"} {
		if !IsDefaultAsset(p) {
			t.Errorf("%s should be default", p)
		}
	}
	for _, p := range []string{"profile_pics/11.jpg", "profile_banner/4.jpg", "profile_pics/me-1a2b3c4d.png", ""} {
		if IsDefaultAsset(p) {
			t.Errorf("%s should not be default", p)
		}
	}
}
