package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"subsidyledger/internal/service/auth"
)

type fakeAuthService struct {
	requestErr error
	verifyErr  error
	loginErr   error
	lastEmail  string
	lastRole   string
}

func (f *fakeAuthService) RequestOTP(ctx context.Context, email string) error {
	f.lastEmail = email
	return f.requestErr
}

func (f *fakeAuthService) VerifyOTP(ctx context.Context, email, code, role string) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	f.lastEmail = email
	f.lastRole = role
	return "token-123", nil
}

func (f *fakeAuthService) StaticLogin(ctx context.Context, email, password, role string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "token-static", nil
}

func newAuthRouter(svc AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc, zap.NewNop())

	r := gin.New()
	r.POST("/api/auth/request-otp", h.RequestOTP)
	r.POST("/api/auth/verify-otp", h.VerifyOTP)
	r.POST("/api/auth/static-login", h.Login)
	return r
}

func TestRequestOTPOK(t *testing.T) {
	svc := &fakeAuthService{}
	r := newAuthRouter(svc)

	w := postJSON(t, r, "/api/auth/request-otp", gin.H{"email": "user@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user@example.com", svc.lastEmail)
}

func TestRequestOTPRejectsBadEmail(t *testing.T) {
	r := newAuthRouter(&fakeAuthService{})
	w := postJSON(t, r, "/api/auth/request-otp", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPReturnsToken(t *testing.T) {
	svc := &fakeAuthService{}
	r := newAuthRouter(svc)

	w := postJSON(t, r, "/api/auth/verify-otp", gin.H{
		"email": "user@example.com", "code": "123456", "role": "producer",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "token-123", resp["token"])
	assert.Equal(t, "producer", svc.lastRole)
}

func TestVerifyOTPRejected(t *testing.T) {
	r := newAuthRouter(&fakeAuthService{verifyErr: auth.ErrInvalidOTP})
	w := postJSON(t, r, "/api/auth/verify-otp", gin.H{
		"email": "user@example.com", "code": "000000",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyOTPUnknownRole(t *testing.T) {
	r := newAuthRouter(&fakeAuthService{verifyErr: auth.ErrUnknownRole})
	w := postJSON(t, r, "/api/auth/verify-otp", gin.H{
		"email": "user@example.com", "code": "123456", "role": "superadmin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaticLoginOK(t *testing.T) {
	r := newAuthRouter(&fakeAuthService{})
	w := postJSON(t, r, "/api/auth/static-login", gin.H{
		"email": "gov@example.com", "password": "demo1234", "role": "gov",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "token-static", resp["token"])
}

func TestStaticLoginRejected(t *testing.T) {
	r := newAuthRouter(&fakeAuthService{loginErr: auth.ErrInvalidCredentials})
	w := postJSON(t, r, "/api/auth/static-login", gin.H{
		"email": "gov@example.com", "password": "wrong", "role": "gov",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
