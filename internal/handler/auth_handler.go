package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subsidyledger/internal/service/auth"
)

// AuthService is the slice of the auth service the handler needs.
type AuthService interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code, role string) (string, error)
	StaticLogin(ctx context.Context, email, password, role string) (string, error)
}

type AuthHandler struct {
	svc    AuthService
	logger *zap.Logger
}

func NewAuthHandler(svc AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

type requestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req requestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("RequestOTP: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}

	h.logger.Info("RequestOTP request received",
		zap.String("email", req.Email),
		zap.String("client_ip", c.ClientIP()),
	)

	if err := h.svc.RequestOTP(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("RequestOTP: failed to issue code",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
	Role  string `json:"role"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("VerifyOTP: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and code required"})
		return
	}

	token, err := h.svc.VerifyOTP(c.Request.Context(), req.Email, req.Code, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidOTP):
			h.logger.Warn("VerifyOTP: code rejected", zap.String("email", req.Email))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		case errors.Is(err, auth.ErrUnknownRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		default:
			h.logger.Error("VerifyOTP: failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	h.logger.Info("VerifyOTP: success", zap.String("email", req.Email))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me echoes the authenticated identity back to the dashboard.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"email": c.GetString("email"),
		"role":  c.GetString("role"),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Login is the static-account path used by demo role accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Login: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and role required"})
		return
	}

	token, err := h.svc.StaticLogin(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Warn("Login: rejected",
				zap.String("email", req.Email),
				zap.String("role", req.Role),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("Login: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
