package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"dsa_arena/internal/api/middleware"
	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	sheetService   *service.SheetService
	maxUploadBytes int64
}

func NewProfileHandler(ps *service.ProfileService, ss *service.SheetService, maxUploadMB int) *ProfileHandler {
	return &ProfileHandler{profileService: ps, sheetService: ss, maxUploadBytes: int64(maxUploadMB) << 20}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users/profile/{username}", h.publicProfile)
	r.Get("/users/summary/{username}", h.summary)

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Get("/users/profile", h.myProfile)
		authRouter.Post("/users/update-photo", h.updatePhoto)
		authRouter.Post("/users/update-banner", h.updateBanner)
		authRouter.Put("/users/profile-info", h.updateProfileInfo)
		authRouter.Put("/users/social-links", h.updateSocialLinks)
	})
}

func (h *ProfileHandler) myProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	user, err := h.profileService.Me(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) publicProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.profileService.Public(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sheetService.Summary(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *ProfileHandler) updateProfileInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var info model.ProfileInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	user, err := h.profileService.UpdateProfileInfo(r.Context(), userID, info)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) updateSocialLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var links model.SocialLinks
	if err := json.NewDecoder(r.Body).Decode(&links); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	user, err := h.profileService.UpdateSocialLinks(r.Context(), userID, links)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

type imageUpdater func(req *http.Request, userID, filename string, file io.Reader) (*model.User, error)

func (h *ProfileHandler) updatePhoto(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, func(req *http.Request, userID, filename string, file io.Reader) (*model.User, error) {
		return h.profileService.UpdatePhoto(req.Context(), userID, filename, file)
	})
}

func (h *ProfileHandler) updateBanner(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, func(req *http.Request, userID, filename string, file io.Reader) (*model.User, error) {
		return h.profileService.UpdateBanner(req.Context(), userID, filename, file)
	})
}

func (h *ProfileHandler) handleUpload(w http.ResponseWriter, r *http.Request, update imageUpdater) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()
	if err := checkSize(header, h.maxUploadBytes); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	user, err := update(r, userID, header.Filename, file)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func checkSize(header *multipart.FileHeader, max int64) error {
	if header.Size > max {
		return fmt.Errorf("file exceeds %d bytes: %w", max, common.ErrValidation)
	}
	return nil
}
