package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/repository"
	"dsa_arena/internal/platform/logger"
	"dsa_arena/internal/platform/storage"
)

const (
	photoDir  = "profile_pics"
	bannerDir = "profile_banner"
)

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type ProfileService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
	log      *logger.Logger
}

func NewProfileService(userRepo repository.UserRepository, store storage.Storage, log *logger.Logger) *ProfileService {
	return &ProfileService{userRepo: userRepo, storage: store, log: log.With("service", "ProfileService")}
}

// Present strips the password hash and turns stored media paths into URLs.
func (s *ProfileService) Present(u *model.User) *model.User {
	u.HashedPassword = ""
	if u.ProfilePhoto != nil {
		url := s.storage.URL(*u.ProfilePhoto)
		u.ProfilePhoto = &url
	}
	if u.ProfileBanner != nil {
		url := s.storage.URL(*u.ProfileBanner)
		u.ProfileBanner = &url
	}
	return u
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Present(u), nil
}

// Public returns the profile anyone may view.
func (s *ProfileService) Public(ctx context.Context, username string) (*model.PublicProfile, error) {
	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return model.NewPublicProfile(s.Present(u)), nil
}

func (s *ProfileService) UpdateProfileInfo(ctx context.Context, userID string, info model.ProfileInfo) (*model.User, error) {
	info.DisplayName = strings.TrimSpace(info.DisplayName)
	if err := common.Validate(info); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfileInfo(ctx, userID, info); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *ProfileService) UpdateSocialLinks(ctx context.Context, userID string, links model.SocialLinks) (*model.User, error) {
	links.GitHub, links.LinkedIn, links.Portfolio = blankToNil(links.GitHub), blankToNil(links.LinkedIn), blankToNil(links.Portfolio)
	if err := common.Validate(links); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateSocialLinks(ctx, userID, links); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func blankToNil(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *ProfileService) UpdatePhoto(ctx context.Context, userID, filename string, r io.Reader) (*model.User, error) {
	return s.replaceImage(ctx, userID, photoDir, filename, r,
		func(u *model.User) *string { return u.ProfilePhoto },
		s.userRepo.UpdatePhoto)
}

func (s *ProfileService) UpdateBanner(ctx context.Context, userID, filename string, r io.Reader) (*model.User, error) {
	return s.replaceImage(ctx, userID, bannerDir, filename, r,
		func(u *model.User) *string { return u.ProfileBanner },
		s.userRepo.UpdateBanner)
}

// replaceImage stores the upload, points the user at it and removes the previous file unless it is a stock asset.
func (s *ProfileService) replaceImage(
	ctx context.Context,
	userID, dir, filename string,
	r io.Reader,
	current func(*model.User) *string,
	update func(ctx context.Context, id, path string) error,
) (*model.User, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return nil, fmt.Errorf("unsupported image type %q: %w", ext, common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	old := current(user)

	rel, err := s.storage.Save(ctx, dir, filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	if err := update(ctx, userID, rel); err != nil {
		_ = s.storage.Delete(ctx, rel)
		return nil, err
	}

	if old != nil && *old != "" && !IsDefaultAsset(*old) {
		if err := s.storage.Delete(ctx, *old); err != nil {
			s.log.Warn("failed to delete previous image", "user_id", userID, "path", *old, "error", err)
		}
	}
	return s.Me(ctx, userID)
}

// VerifyIdentity checks the legacy email/username fields older clients still send against the authenticated user.
// Empty fields are ignored.
func (s *ProfileService) VerifyIdentity(ctx context.Context, userID, email, username string) error {
	email, username = strings.TrimSpace(email), strings.TrimSpace(username)
	if email == "" && username == "" {
		return nil
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if email != "" && !strings.EqualFold(email, u.Email) {
		return fmt.Errorf("email does not match the authenticated user: %w", common.ErrForbidden)
	}
	if username != "" && username != u.Username {
		return fmt.Errorf("username does not match the authenticated user: %w", common.ErrForbidden)
	}
	return nil
}
