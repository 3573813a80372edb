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

type NoteHandler struct {
	noteService *service.NoteService
	identity    identityVerifier
}

func NewNoteHandler(ns *service.NoteService, identity identityVerifier) *NoteHandler {
	return &NoteHandler{noteService: ns, identity: identity}
}

type markdownResponse struct {
	Message string              `json:"message"`
	Note    *model.MarkdownNote `json:"note"`
}

func (h *NoteHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Get("/notes", h.listNotes)
		authRouter.Post("/notes", h.createNote)
		authRouter.Delete("/notes", h.deleteNote)
		authRouter.Post("/topic/questions-notes", h.topicNotes)
		authRouter.Post("/markdown-note/upsert", h.upsertMarkdown)
	})
}

func (h *NoteHandler) listNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	questionID, err := parseInt64(r.URL.Query().Get("question_id"), "question_id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if err := h.identity.VerifyIdentity(r.Context(), userID, r.URL.Query().Get("email"), r.URL.Query().Get("username")); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	notes, err := h.noteService.ListNotes(r.Context(), userID, questionID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if notes == nil {
		notes = []model.UserNote{}
	}
	common.RespondWithJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) createNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.identity.VerifyIdentity(r.Context(), userID, req.Email, req.Username); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), userID, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) deleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	noteID, err := parseInt64(r.URL.Query().Get("id"), "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if err := h.noteService.DeleteNote(r.Context(), userID, noteID); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Note deleted"})
}

func (h *NoteHandler) topicNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.TopicNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := common.Validate(req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if err := h.identity.VerifyIdentity(r.Context(), userID, req.Email, req.Username); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	view, err := h.noteService.TopicNotes(r.Context(), userID, req.TopicID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *NoteHandler) upsertMarkdown(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.UpsertMarkdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.identity.VerifyIdentity(r.Context(), userID, req.Email, req.Username); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	note, created, err := h.noteService.UpsertMarkdown(r.Context(), userID, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if created {
		common.RespondWithJSON(w, http.StatusCreated, markdownResponse{Message: "Note created", Note: note})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, markdownResponse{Message: "Note updated", Note: note})
}
