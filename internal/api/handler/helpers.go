package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"dsa_arena/internal/api/middleware"
	"dsa_arena/internal/common"

	"github.com/go-chi/chi/v5"
)

// identityVerifier checks legacy email/username fields against the token's user.
type identityVerifier interface {
	VerifyIdentity(ctx context.Context, userID, email, username string) error
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok || userID == "" {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return "", false
	}
	return userID, true
}

func parseInt64(raw, name string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required: %w", name, common.ErrBadRequest)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, common.ErrBadRequest)
	}
	return v, nil
}

func urlParamInt64(r *http.Request, name string) (int64, error) {
	return parseInt64(chi.URLParam(r, name), name)
}
