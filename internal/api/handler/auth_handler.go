package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"safecommute/internal/app/service"
	"safecommute/internal/common"
)

type AuthHandler struct {
	auth         *service.AuthService
	registration *service.RegistrationService
}

func NewAuthHandler(auth *service.AuthService, registration *service.RegistrationService) *AuthHandler {
	return &AuthHandler{auth: auth, registration: registration}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Post("/verify", h.verify)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithText(w, http.StatusAccepted, err.Error())
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondWithText(w, http.StatusAccepted, err.Error())
		return
	}

	switch result.Status {
	case service.LoginOK:
		common.RespondWithJSON(w, http.StatusOK, result)
	case service.LoginUnverified:
		common.RespondWithText(w, http.StatusAccepted, codeUnverified)
	default:
		common.RespondWithText(w, http.StatusAccepted, codeInvalidLogin)
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithText(w, http.StatusAccepted, err.Error())
		return
	}

	avail, err := h.registration.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		common.RespondWithText(w, http.StatusAccepted, err.Error())
		return
	}

	switch avail {
	case service.UsernameTaken:
		common.RespondWithText(w, http.StatusAccepted, codeUsernameTaken)
	case service.EmailTaken:
		common.RespondWithText(w, http.StatusAccepted, codeEmailTaken)
	default:
		common.RespondWithText(w, http.StatusAccepted, codeUserCreated)
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithText(w, http.StatusAccepted, codeUnknownToken)
		return
	}

	if _, err := h.registration.CompleteVerification(r.Context(), req.Token); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.RespondWithText(w, http.StatusAccepted, codeUnknownToken)
			return
		}
		common.RespondWithText(w, http.StatusInternalServerError, serverErrorBody)
		return
	}
	common.RespondWithText(w, http.StatusOK, codeVerified)
}
