package handler

import (
	"net/http"

	"dochub/internal/auth"
	"dochub/internal/domain"
	"dochub/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	tokens      *auth.TokenManager
}

func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type resetRequest struct {
	Email string `json:"email"`
}

// Login выдает пару токенов
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "Login", err)
		return
	}

	tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "Login", err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "Refresh", err)
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), req.Refresh)
	if err != nil {
		writeError(w, r, "Refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "Verify", err)
		return
	}

	if err := h.authService.VerifyToken(req.Token); err != nil {
		writeError(w, r, "Verify", err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// Logout отзывает refresh токен
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "Logout", err)
		return
	}

	if err := h.authService.Logout(r.Context(), req.Refresh); err != nil {
		writeError(w, r, "Logout", err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "Register", err)
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, "Register", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "Me", err)
		return
	}

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		writeError(w, r, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "UpdateProfile", err)
		return
	}

	var update domain.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, "UpdateProfile", err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		writeError(w, r, "UpdateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "ChangePassword", err)
		return
	}

	var req service.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "ChangePassword", err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req); err != nil {
		writeError(w, r, "ChangePassword", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

// ResetPassword всегда отвечает одинаково, независимо от наличия email
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "ResetPassword", err)
		return
	}
	if req.Email == "" {
		writeError(w, r, "ResetPassword", domain.Validation("email: cannot be blank."))
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, "ResetPassword", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "If an account with this email exists, password reset instructions have been sent.",
	})
}

func (h *AuthHandler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "ConfirmResetPassword", err)
		return
	}

	if err := h.authService.ConfirmResetPassword(r.Context(), req); err != nil {
		writeError(w, r, "ConfirmResetPassword", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset successfully"})
}
