package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/textlens/internal/middleware"
	"github.com/xxxsen/textlens/internal/model"
	"github.com/xxxsen/textlens/internal/pkg/errcode"
	"github.com/xxxsen/textlens/internal/pkg/response"
	"github.com/xxxsen/textlens/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type authRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        userView `json:"user"`
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", "", true, true)
}

func (h *AuthHandler) issue(c *gin.Context, user *model.User, token string) {
	h.setTokenCookie(c, token, int(h.auth.TokenTTL().Seconds()))
	response.Success(c, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserView(user),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	user, token, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	h.issue(c, user, token)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	h.issue(c, user, token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := getUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "Not authenticated")
		return
	}
	response.Success(c, toUserView(user))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	response.Success(c, gin.H{"message": "Logged out"})
}

