package handler

import (
	"errors"
	"net/http"

	"github.com/get30seconds/auth-api/internal/apperror"
	"github.com/get30seconds/auth-api/internal/domain"
	"github.com/get30seconds/auth-api/internal/dto"
	"github.com/get30seconds/auth-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondAuthResult(c, result)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondAuthResult(c, result)
}

// SocialLogin handles POST /api/social_login
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req dto.SocialLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c)
		return
	}

	result, err := h.authService.SocialLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondAuthResult(c, result)
}

// Logout handles POST /api/logout. The auth middleware has already
// resolved the bearer token; only that token is revoked.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Unauthenticated."})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logout."})
}

// ForgotPassword handles POST /api/password/forgot
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "The email has been sent."})
}

// CheckResetCode handles POST /api/password/check_code
func (h *AuthHandler) CheckResetCode(c *gin.Context) {
	var req dto.CheckResetCodeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c)
		return
	}

	if err := h.authService.CheckResetCode(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Code is valid."})
}

// ResetPassword handles POST /api/password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c)
		return
	}

	result, err := h.authService.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondAuthResult(c, result)
}

// CurrentUser handles GET /api/users/current
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Unauthenticated."})
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func respondAuthResult(c *gin.Context, result *service.AuthResult) {
	c.JSON(http.StatusOK, dto.AuthResponse{
		User:  dto.NewUserResponse(result.User),
		Token: result.Token,
	})
}

func respondBindError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "The given data was invalid."})
}

// respondError maps the error taxonomy to HTTP: NotFound is 404, the
// other app error kinds are 400, anything unexpected is 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := http.StatusBadRequest
		if errors.Is(appErr, apperror.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, dto.MessageResponse{Message: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: "Server error."})
}

func claimsFromContext(c *gin.Context) (*domain.TokenClaims, bool) {
	value, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := value.(*domain.TokenClaims)
	return claims, ok
}
