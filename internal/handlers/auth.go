package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/internal/middleware"
	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/response"
)

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

// Login verifies credentials, sets the session cookie and returns the token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.SetCookie(middleware.TokenCookieName, session.Token, h.auth.TokenTTL(), "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
