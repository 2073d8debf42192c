package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/bookstore/internal/api/dto"
	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := a.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, "User registered successfully", dto.ToUserDTO(user))
}

func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := a.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Login successful", dto.LoginResponse{
		User:      dto.ToUserDTO(res.User),
		Token:     "Bearer " + res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

// Logout 撤銷使用者所有 session
func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.authService.Logout(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Logged out successfully", nil)
}
