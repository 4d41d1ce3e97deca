package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/clubarena/matchup/internal/auth"
	"github.com/clubarena/matchup/internal/middleware"
	"github.com/clubarena/matchup/internal/models"
	"github.com/clubarena/matchup/pkg/crypto"
	appErrors "github.com/clubarena/matchup/pkg/errors"
	"github.com/clubarena/matchup/pkg/metrics"
	"github.com/clubarena/matchup/pkg/response"
)

// LoginRequest carries the credentials presented to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	jwt *iauth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService) (*AuthHandler, error) {
	if db == nil {
		return nil, errors.New("auth handler: db is required")
	}
	if jwt == nil {
		return nil, errors.New("auth handler: jwt service is required")
	}
	return &AuthHandler{db: db, jwt: jwt}, nil
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var user models.User
	err := h.db.WithContext(requestContext(c)).
		Where("username = ? OR email = ?", req.Username, req.Username).
		First(&user).Error
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, appErrors.ErrInvalidCredentials)
			return
		}
		response.Error(c, err)
		return
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, req.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	now := time.Now().UTC()
	_ = h.db.WithContext(requestContext(c)).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("last_login_at", now).Error

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var user models.User
	if err := h.db.WithContext(requestContext(c)).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
