package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	Tagline        *string   `json:"tagline"`
	Pronouns       *string   `json:"pronouns"`
	Location       *string   `json:"location"`
	ProfilePhoto   *string   `json:"profile_photo"`
	ProfileBanner  *string   `json:"profile_banner"`
	GitHub         *string   `json:"github"`
	LinkedIn       *string   `json:"linkedin"`
	Portfolio      *string   `json:"portfolio"`
	Score          int       `json:"score"`
	Rank           string    `json:"rank"`
	Privilege      *string   `json:"privilege"`
	IsAccepted     bool      `json:"is_accepted"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ProfileInfo struct {
	DisplayName string  `json:"display_name" validate:"required,max=100"`
	Tagline     *string `json:"tagline" validate:"omitempty,max=255"`
	Pronouns    *string `json:"pronouns" validate:"omitempty,max=50"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
}

type SocialLinks struct {
	GitHub    *string `json:"github" validate:"omitempty,url"`
	LinkedIn  *string `json:"linkedin" validate:"omitempty,url"`
	Portfolio *string `json:"portfolio" validate:"omitempty,url"`
}
