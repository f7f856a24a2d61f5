package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/get30seconds/auth-api/internal/apperror"
	"github.com/get30seconds/auth-api/internal/domain"
	"github.com/get30seconds/auth-api/internal/dto"
	"github.com/get30seconds/auth-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService returns canned results so handler tests only cover
// request binding and response mapping.
type stubAuthService struct {
	authResult *service.AuthResult
	user       *dto.UserResponse
	claims     *domain.TokenClaims
	err        error

	loggedOut []string
}

func (s *stubAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*service.AuthResult, error) {
	return s.authResult, s.err
}

func (s *stubAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*service.AuthResult, error) {
	return s.authResult, s.err
}

func (s *stubAuthService) SocialLogin(_ context.Context, _ *dto.SocialLoginRequest) (*service.AuthResult, error) {
	return s.authResult, s.err
}

func (s *stubAuthService) Logout(_ context.Context, claims *domain.TokenClaims) error {
	if s.err != nil {
		return s.err
	}
	s.loggedOut = append(s.loggedOut, claims.TokenID)
	return nil
}

func (s *stubAuthService) ForgotPassword(_ context.Context, _ *dto.ForgotPasswordRequest) error {
	return s.err
}

func (s *stubAuthService) CheckResetCode(_ context.Context, _ *dto.CheckResetCodeRequest) error {
	return s.err
}

func (s *stubAuthService) ResetPassword(_ context.Context, _ *dto.ResetPasswordRequest) (*service.AuthResult, error) {
	return s.authResult, s.err
}

func (s *stubAuthService) CurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return s.user, s.err
}

func (s *stubAuthService) ValidateToken(_ context.Context, _ string) (*domain.TokenClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func testAuthResult() *service.AuthResult {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &service.AuthResult{
		User: &domain.User{
			ID:        "user-1",
			Email:     "a@x.com",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Token: "signed-token",
	}
}

func newTestRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc)

	router := gin.New()
	api := router.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/social_login", h.SocialLogin)
		api.POST("/password/forgot", h.ForgotPassword)
		api.POST("/password/check_code", h.CheckResetCode)
		api.POST("/password/reset", h.ResetPassword)

		authorized := api.Group("/")
		authorized.Use(AuthMiddleware(svc))
		{
			authorized.POST("/logout", h.Logout)
			authorized.GET("/users/current", h.CurrentUser)
		}
	}
	return router
}

func doJSON(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterHandler_Success(t *testing.T) {
	svc := &stubAuthService{authResult: testAuthResult()}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/register",
		`{"email":"a@x.com","password":"secret1","password_confirmation":"secret1"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"signed-token"`)
	assert.Contains(t, w.Body.String(), `"email":"a@x.com"`)
}

func TestRegisterHandler_MalformedJSON(t *testing.T) {
	svc := &stubAuthService{authResult: testAuthResult()}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/register", `{"email":`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"The given data was invalid."}`, w.Body.String())
}

func TestLoginHandler_NotFoundMapsTo404(t *testing.T) {
	svc := &stubAuthService{err: apperror.NotFound("User does not exist.")}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/login",
		`{"email":"ghost@x.com","password":"secret1"}`, nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"User does not exist."}`, w.Body.String())
}

func TestLoginHandler_AuthErrorMapsTo400(t *testing.T) {
	svc := &stubAuthService{err: apperror.Auth("Incorrect password.")}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/login",
		`{"email":"a@x.com","password":"wrong1"}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Incorrect password."}`, w.Body.String())
}

func TestLoginHandler_UnknownErrorMapsTo500(t *testing.T) {
	svc := &stubAuthService{err: errors.New("connection reset")}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/login",
		`{"email":"a@x.com","password":"secret1"}`, nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error."}`, w.Body.String())
}

func TestSocialLoginHandler_ValidationError(t *testing.T) {
	svc := &stubAuthService{err: apperror.Validation("The selected provider is invalid.")}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/social_login",
		`{"provider":"twitter","token":"tok"}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"The selected provider is invalid."}`, w.Body.String())
}

func TestForgotPasswordHandler_Success(t *testing.T) {
	svc := &stubAuthService{}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/password/forgot", `{"email":"a@x.com"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"The email has been sent."}`, w.Body.String())
}

func TestForgotPasswordHandler_DeliveryError(t *testing.T) {
	svc := &stubAuthService{err: apperror.Delivery("Email sending error.")}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/password/forgot", `{"email":"a@x.com"}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Email sending error."}`, w.Body.String())
}

func TestCheckResetCodeHandler_Valid(t *testing.T) {
	svc := &stubAuthService{}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/password/check_code",
		`{"email":"a@x.com","code":"123456"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Code is valid."}`, w.Body.String())
}

func TestCheckResetCodeHandler_Expired(t *testing.T) {
	svc := &stubAuthService{err: apperror.Auth("Code is expired.")}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/password/check_code",
		`{"email":"a@x.com","code":"123456"}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Code is expired."}`, w.Body.String())
}

func TestResetPasswordHandler_Success(t *testing.T) {
	svc := &stubAuthService{authResult: testAuthResult()}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/password/reset",
		`{"email":"a@x.com","password":"newpass1","password_confirmation":"newpass1","code":"123456"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"signed-token"`)
}

func TestLogoutHandler_RevokesPresentedToken(t *testing.T) {
	svc := &stubAuthService{
		claims: &domain.TokenClaims{UserID: "user-1", Email: "a@x.com", TokenID: "jti-1"},
	}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/api/logout", "",
		map[string]string{"Authorization": "Bearer signed-token"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Successfully logout."}`, w.Body.String())
	assert.Equal(t, []string{"jti-1"}, svc.loggedOut)
}

func TestCurrentUserHandler(t *testing.T) {
	svc := &stubAuthService{
		claims: &domain.TokenClaims{UserID: "user-1", Email: "a@x.com", TokenID: "jti-1"},
		user:   &dto.UserResponse{ID: "user-1", Email: "a@x.com"},
	}
	router := newTestRouter(svc)

	w := doJSON(router, http.MethodGet, "/api/users/current", "",
		map[string]string{"Authorization": "Bearer signed-token"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"user-1"`)
	assert.Contains(t, w.Body.String(), `"email":"a@x.com"`)
}
