package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"dsa_arena/internal/api/middleware"
	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
}

func NewUserHandler(as *service.AuthService, ps *service.ProfileService) *UserHandler {
	return &UserHandler{authService: as, profileService: ps}
}

type registeredUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    registeredUser `json:"user"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    interface{} `json:"user,omitempty"`
	Token   string      `json:"token,omitempty"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.register)
	r.Post("/users/login", h.login)
	r.Get("/users/check-username", h.checkUsername)
	r.Get("/users/check-email", h.checkEmail)
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, registerResponse{
		Message: "Registration successful. Your account is awaiting admin approval.",
		User: registeredUser{
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Email:       user.Email,
		},
	})
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithJSON(w, http.StatusBadRequest, loginResponse{Message: "Invalid request payload"})
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		status := common.HTTPStatusFromError(err)
		msg := common.PublicMessage(err)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			msg = "Invalid email or password"
		case errors.Is(err, service.ErrAccountPending):
			msg = "Your account is awaiting admin approval"
		}
		common.RespondWithJSON(w, status, loginResponse{Message: msg})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		User:    h.profileService.Present(resp.User),
		Token:   resp.Token,
	})
}

func (h *UserHandler) checkUsername(w http.ResponseWriter, r *http.Request) {
	exists, err := h.authService.UsernameExists(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, existsResponse{Exists: exists})
}

func (h *UserHandler) checkEmail(w http.ResponseWriter, r *http.Request) {
	exists, err := h.authService.EmailExists(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, existsResponse{Exists: exists})
}

type AdminHandler struct {
	authService *service.AuthService
}

func NewAdminHandler(as *service.AuthService) *AdminHandler {
	return &AdminHandler{authService: as}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/admin/users/{id}/accept", h.acceptUser)
	})
}

func (h *AdminHandler) acceptUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "User accepted",
		"username": user.Username,
	})
}
