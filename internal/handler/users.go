package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, false
	}
	return req, req.Login != "" && req.Password != ""
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Login and password are required")
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password)
	if err != nil {
		h.writeServiceError(w, "register user error", err, zap.String("login", req.Login))
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	writeSuccess(w, http.StatusCreated, userResponse{ID: userID, Login: req.Login}, "User registered successfully")
}

// Login выполняет аутентификацию пользователя и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Login and password are required")
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		h.writeServiceError(w, "login user error", err, zap.String("login", req.Login))
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	writeSuccess(w, http.StatusOK, userResponse{ID: userID, Login: req.Login}, "User logged in successfully")
}

// Logout сбрасывает cookie авторизации.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	writeSuccess(w, http.StatusOK, nil, "User logged out successfully")
}
