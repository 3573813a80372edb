package handler

import (
	"encoding/json"
	"net/http"

	"dsa_arena/internal/api/middleware"
	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type StatusHandler struct {
	statusService *service.StatusService
	identity      identityVerifier
}

func NewStatusHandler(ss *service.StatusService, identity identityVerifier) *StatusHandler {
	return &StatusHandler{statusService: ss, identity: identity}
}

func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Post("/update-status", h.updateStatus)
	})
}

func (h *StatusHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req service.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := common.Validate(req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	action, ok := model.ParseAction(req.Action)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid action")
		return
	}
	if err := h.identity.VerifyIdentity(r.Context(), userID, req.Email, req.Username); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	result, err := h.statusService.UpdateStatus(r.Context(), userID, req.QuestionID, action)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
