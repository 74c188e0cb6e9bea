package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyeonlab/accounts-backend/internal/app/repository"
	"github.com/hyeonlab/accounts-backend/internal/app/service"
	"github.com/hyeonlab/accounts-backend/internal/db"
	"github.com/hyeonlab/accounts-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

type sentMail struct {
	Name  string
	Email string
	Token string
}

type fakeMailer struct {
	verifications []sentMail
	resets        []sentMail
}

func (m *fakeMailer) SendVerificationEmail(name, email, token string) error {
	m.verifications = append(m.verifications, sentMail{name, email, token})
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(name, email, token string) error {
	m.resets = append(m.resets, sentMail{name, email, token})
	return nil
}

type authTestEnv struct {
	router       *gin.Engine
	authService  service.AuthService
	resetService service.PasswordResetService
	mail         *fakeMailer
}

func setupAuthControllerTest(t *testing.T) *authTestEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	resetRepo := repository.NewPasswordResetRepository(testDB)
	mail := &fakeMailer{}

	authService := service.NewAuthService(
		userRepo,
		mail,
		testJWTSecret,
		24*time.Hour,
		120*time.Minute,
		15*time.Minute,
	)
	resetService := service.NewPasswordResetService(userRepo, resetRepo, mail, 60*time.Minute)

	ctrl := NewAuthController(authService, resetService)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, userRepo)

	router := gin.New()
	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)
	router.GET("/email/verify/:hash", ctrl.VerifyEmail)
	router.POST("/email/resend", authMiddleware.Authenticate(), ctrl.ResendVerification)
	router.POST("/password/email", ctrl.ForgotPassword)
	router.POST("/password/reset", ctrl.ResetPassword)
	router.GET("/me", authMiddleware.Authenticate(), ctrl.GetMe)
	router.POST("/change-password", authMiddleware.Authenticate(), ctrl.ChangePassword)
	router.POST("/logout", authMiddleware.Authenticate(), ctrl.Logout)

	return &authTestEnv{
		router:       router,
		authService:  authService,
		resetService: resetService,
		mail:         mail,
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestAuthController_Register_Success(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := postJSON(t, env.router, "/register", gin.H{
		"name":                  "Test User",
		"email":                 "test@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	}, "")

	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, true, response["success"])
	assert.Contains(t, response["message"], "registered")
	// Raw user and token never appear in the register response
	assert.NotContains(t, response, "data")
	assert.NotContains(t, response, "token")

	require.Len(t, env.mail.verifications, 1)
	assert.Equal(t, "test@example.com", env.mail.verifications[0].Email)
}

func TestAuthController_Register_ValidationMap(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := postJSON(t, env.router, "/register", gin.H{
		"name":                  "Test User",
		"email":                 "not-an-email",
		"password":              "short",
		"password_confirmation": "short",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, false, response["success"])

	fields := response["message"].(map[string]interface{})
	assert.Equal(t, "Invalid email", fields["email"])
	assert.Equal(t, "The Password field must be at least 8 characters.", fields["password"])
}

func TestAuthController_Register_ConfirmationMismatch(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := postJSON(t, env.router, "/register", gin.H{
		"name":                  "Test User",
		"email":                 "test@example.com",
		"password":              "password123",
		"password_confirmation": "password456",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeBody(t, w)
	fields := response["message"].(map[string]interface{})
	assert.Equal(t, "The password confirmation does not match", fields["password"])
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	w := postJSON(t, env.router, "/register", gin.H{
		"name":                  "Another User",
		"email":                 "test@example.com",
		"password":              "password456",
		"password_confirmation": "password456",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeBody(t, w)
	fields := response["message"].(map[string]interface{})
	assert.Equal(t, "Email is already taken", fields["email"])
}

func TestAuthController_Login(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	// Success: token in envelope
	w := postJSON(t, env.router, "/login", gin.H{
		"email":    "test@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, true, response["success"])
	assert.NotEmpty(t, response["token"])

	// Wrong password and unknown email produce the identical body
	wrongPw := postJSON(t, env.router, "/login", gin.H{
		"email":    "test@example.com",
		"password": "wrongpassword",
	}, "")
	unknown := postJSON(t, env.router, "/login", gin.H{
		"email":    "nobody@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.Contains(t, wrongPw.Body.String(), "Invalid credentials")
}

func TestAuthController_VerifyEmail(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	require.Len(t, env.mail.verifications, 1)
	token := env.mail.verifications[0].Token

	req := httptest.NewRequest("GET", "/email/verify/"+token, nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Email verified successfully")

	// Second redemption fails
	req = httptest.NewRequest("GET", "/email/verify/"+token, nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already verified")

	// Garbage token gets the uniform message
	req = httptest.NewRequest("GET", "/email/verify/garbage", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired verification link")
}

func TestAuthController_ResendVerification(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	token, err := env.authService.Login("test@example.com", "password123")
	require.NoError(t, err)

	w := postJSON(t, env.router, "/email/resend", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.mail.verifications, 2)

	// Once verified, resend is refused
	require.NoError(t, env.authService.VerifyEmail(env.mail.verifications[1].Token))
	w = postJSON(t, env.router, "/email/resend", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already verified")
}

func TestAuthController_ForgotPassword(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	w := postJSON(t, env.router, "/password/email", gin.H{
		"email": "test@example.com",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, true, response["success"])
	assert.NotEmpty(t, response["resetToken"])
	require.Len(t, env.mail.resets, 1)
	assert.Equal(t, response["resetToken"], env.mail.resets[0].Token)

	// Unknown email is a 404
	w = postJSON(t, env.router, "/password/email", gin.H{
		"email": "nobody@example.com",
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthController_ResetPassword(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	secret, err := env.resetService.RequestReset("test@example.com")
	require.NoError(t, err)

	w := postJSON(t, env.router, "/password/reset", gin.H{
		"token":                 secret,
		"email":                 "test@example.com",
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// New password works, old does not
	_, err = env.authService.Login("test@example.com", "newpassword1")
	require.NoError(t, err)
	_, err = env.authService.Login("test@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Consumed token is rejected
	w = postJSON(t, env.router, "/password/reset", gin.H{
		"token":                 secret,
		"email":                 "test@example.com",
		"password":              "anotherpass1",
		"password_confirmation": "anotherpass1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestAuthController_GetMe(t *testing.T) {
	env := setupAuthControllerTest(t)

	user, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	token, err := env.authService.Login("test@example.com", "password123")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(user.ID), data["id"])
	assert.Equal(t, user.Email, data["email"])
	assert.Equal(t, user.Name, data["name"])

	// No token
	req = httptest.NewRequest("GET", "/me", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_ChangePassword(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "oldpassword1")
	require.NoError(t, err)
	token, err := env.authService.Login("test@example.com", "oldpassword1")
	require.NoError(t, err)

	// Wrong old password
	w := postJSON(t, env.router, "/change-password", gin.H{
		"old_password":          "wrongpassword",
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid old password")

	// Success
	w = postJSON(t, env.router, "/change-password", gin.H{
		"old_password":          "oldpassword1",
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err = env.authService.Login("test@example.com", "newpassword1")
	require.NoError(t, err)
}

func TestAuthController_Logout(t *testing.T) {
	env := setupAuthControllerTest(t)

	_, err := env.authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	token, err := env.authService.Login("test@example.com", "password123")
	require.NoError(t, err)

	w := postJSON(t, env.router, "/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out successfully")
}
