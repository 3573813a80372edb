package handler

import (
	"net/http"

	"dsa_arena/internal/api/middleware"
	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common"

	"github.com/go-chi/chi/v5"
)

type SheetHandler struct {
	sheetService *service.SheetService
	identity     identityVerifier
}

func NewSheetHandler(ss *service.SheetService, identity identityVerifier) *SheetHandler {
	return &SheetHandler{sheetService: ss, identity: identity}
}

func (h *SheetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sheets", h.listSheets)
	r.Get("/progress/{username}/{sheet_id}", h.progress)

	// Sheet reads are public; a valid token only adds the caller's flags.
	r.Group(func(optional chi.Router) {
		optional.Use(middleware.OptionalUser)
		optional.Get("/sheets/{id}", h.getSheet)
		optional.Get("/sheets/{id}/topics-with-questions", h.topicsWithQuestions)
	})

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Get("/saved", h.saved)
	})
}

func (h *SheetHandler) listSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.sheetService.ListSheets(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sheets)
}

func (h *SheetHandler) getSheet(w http.ResponseWriter, r *http.Request) {
	sheetID, err := urlParamInt64(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	detail, err := h.sheetService.GetSheetDetail(r.Context(), sheetID, userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *SheetHandler) topicsWithQuestions(w http.ResponseWriter, r *http.Request) {
	sheetID, err := urlParamInt64(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	topics, err := h.sheetService.TopicsWithQuestions(r.Context(), sheetID, userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, topics)
}

func (h *SheetHandler) progress(w http.ResponseWriter, r *http.Request) {
	sheetID, err := urlParamInt64(r, "sheet_id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	view, err := h.sheetService.Progress(r.Context(), chi.URLParam(r, "username"), sheetID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *SheetHandler) saved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.identity.VerifyIdentity(r.Context(), userID, r.URL.Query().Get("email"), r.URL.Query().Get("username")); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	groups, err := h.sheetService.Saved(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, groups)
}
