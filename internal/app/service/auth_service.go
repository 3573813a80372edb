package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"dsa_arena/internal/common"
	"dsa_arena/internal/common/security"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/rank"
	"dsa_arena/internal/domain/repository"
	"dsa_arena/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPhotoCount  = 10
	defaultBannerCount = 3
)

type AuthService struct {
	txRunner      repository.TxRunner
	userRepo      repository.UserRepository
	progressRepo  repository.ProgressRepository
	notifications *NotificationService
	primeProgress bool
	log           *logger.Logger
}

func NewAuthService(
	txRunner repository.TxRunner,
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	notifications *NotificationService,
	primeProgress bool,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		txRunner:      txRunner,
		userRepo:      userRepo,
		progressRepo:  progressRepo,
		notifications: notifications,
		primeProgress: primeProgress,
		log:           log.With("service", "AuthService"),
	}
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,max=30"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Error values distinguishing why a login was refused.
var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", common.ErrUnauthorized)
	ErrAccountPending     = fmt.Errorf("account is pending admin approval: %w", common.ErrForbidden)
	ErrAccountDisabled    = fmt.Errorf("account is disabled: %w", common.ErrForbidden)
)

// IsDefaultAsset reports whether path is one of the stock profile images handed out at registration.
func IsDefaultAsset(path string) bool {
	for i := 1; i <= defaultPhotoCount; i++ {
		if path == fmt.Sprintf("profile_pics/%d.jpg", i) {
			return true
		}
	}
	for i := 1; i <= defaultBannerCount; i++ {
		if path == fmt.Sprintf("profile_banner/%d.jpg", i) {
			return true
		}
	}
	return false
}

// Register creates an account awaiting admin approval and notifies the admin.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	photo := fmt.Sprintf("profile_pics/%d.jpg", rand.IntN(defaultPhotoCount)+1)
	banner := fmt.Sprintf("profile_banner/%d.jpg", rand.IntN(defaultBannerCount)+1)
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser,
		ProfilePhoto:   &photo,
		ProfileBanner:  &banner,
		Score:          0,
		Rank:           rank.Baseline,
		IsAccepted:     false,
		IsActive:       true,
	}

	err = s.txRunner.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		if s.primeProgress {
			if _, err := s.progressRepo.PrimeUser(ctx, tx, user.ID); err != nil {
				return fmt.Errorf("failed to prime progress: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.notifications.RegistrationRequested(ctx, user)
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)

	user.HashedPassword = ""
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if !user.IsAccepted {
		return nil, ErrAccountPending
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) UsernameExists(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, fmt.Errorf("username is required: %w", common.ErrBadRequest)
	}
	return s.userRepo.UsernameExists(ctx, strings.TrimSpace(username))
}

func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, fmt.Errorf("email is required: %w", common.ErrBadRequest)
	}
	return s.userRepo.EmailExists(ctx, email)
}

// Accept approves a pending account and emails the user.
func (s *AuthService) Accept(ctx context.Context, userID string) (*model.User, error) {
	if err := s.userRepo.Accept(ctx, userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.notifications.AccountApproved(ctx, user)
	s.log.Info("user accepted", "user_id", user.ID)
	user.HashedPassword = ""
	return user, nil
}
