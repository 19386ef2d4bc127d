package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/auth"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/dtos"
	"go.uber.org/zap"
)

// AuthHandler exposes login and token introspection for the admin UI.
type AuthHandler struct {
	Auth *auth.Service
	Log  *zap.SugaredLogger
}

func NewAuthHandler(authService *auth.Service, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{Auth: authService, Log: log}
}

// Login is the POST /api/auth/login endpoint.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	_ = c.ShouldBindJSON(&req)

	user, ok := h.Auth.ValidateCredentials(req.Username, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный логин или пароль."})
		return
	}

	token, err := h.Auth.IssueToken(user)
	if err != nil {
		h.Log.Errorw("token issue failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось выполнить вход."})
		return
	}

	c.JSON(http.StatusOK, dtos.LoginResponse{
		Token: token,
		User: dtos.UserInfo{
			Username:    user.Username,
			Role:        user.Role,
			DisplayName: user.DisplayName,
		},
	})
}

// Me is the GET /api/auth/me endpoint.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": dtos.UserInfo{
			Username:    user.Username,
			Role:        user.Role,
			DisplayName: user.DisplayName,
		},
	})
}
