package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "orbit/internal/errors"
	"orbit/internal/middleware"
	"orbit/internal/models"
	"orbit/internal/services"
	"orbit/internal/testutil"
)

// --- mock user service ---

type mockUserService struct {
	registerFn       func(name, email, password string) (*models.User, error)
	loginFn          func(email, password string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	countUsersFn     func() (int64, error)
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(token, newPassword string) error
}

func (m *mockUserService) Register(name, email, password string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(name, email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Name: name, Email: email}, nil
}

func (m *mockUserService) Login(email, password string) (*models.User, error) {
	if m.loginFn != nil {
		return m.loginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) CountUsers() (int64, error) {
	if m.countUsersFn != nil {
		return m.countUsersFn()
	}
	return 0, nil
}

func (m *mockUserService) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(ctx, email)
	}
	return nil
}

func (m *mockUserService) ResetPassword(token, newPassword string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(token, newPassword)
	}
	return nil
}

var _ services.UserServicer = (*mockUserService)(nil)

func testTokens() *middleware.TokenManager {
	return middleware.NewTokenManager("test-secret", time.Hour)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/signup", handler.Signup)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/forgotpassword", handler.ForgotPassword)
	r.PUT("/auth/resetpassword/:resetToken", handler.ResetPassword)
	r.GET("/auth/count", handler.Count)
	r.GET("/auth/me", injectUserID(testUserID), handler.Me)
	r.GET("/anonymous/me", handler.Me)
	return r
}

// --- tests ---

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("returns 201 with a token that names the user", func(t *testing.T) {
		tokens := testTokens()
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, tokens))

		rec := doRequest(r, "POST", "/auth/signup",
			`{"name":"Asha","email":"asha@example.com","password":"password123"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["id"] != testUserID || result["name"] != "Asha" || result["email"] != "asha@example.com" {
			t.Errorf("unexpected body: %v", result)
		}
		claims, err := tokens.ParseToken(result["token"].(string))
		if err != nil {
			t.Fatalf("expected a valid token, got %v", err)
		}
		if claims.Subject != testUserID {
			t.Errorf("expected subject %s, got %s", testUserID, claims.Subject)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/signup", `{"email":"asha@example.com","password":"password123"}`)

		testutil.AssertErrorResponse(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("returns 400 on blank name", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/signup", `{"name":"  ","email":"asha@example.com","password":"password123"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid email format", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/signup", `{"name":"Asha","email":"not-an-email","password":"password123"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on duplicate email", func(t *testing.T) {
		svc := &mockUserService{
			registerFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "POST", "/auth/signup", `{"name":"Asha","email":"asha@example.com","password":"password123"}`)

		testutil.AssertErrorResponse(t, rec, http.StatusBadRequest, "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with token", func(t *testing.T) {
		svc := &mockUserService{
			loginFn: func(email, password string) (*models.User, error) {
				if password != "password123" {
					t.Errorf("unexpected password %q", password)
				}
				return &models.User{Base: models.Base{ID: testUserID}, Name: "Asha", Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"asha@example.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token"] == nil || result["token"] == "" {
			t.Error("expected non-empty token")
		}
		if result["name"] != "Asha" {
			t.Errorf("expected name Asha, got %v", result["name"])
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		svc := &mockUserService{
			loginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"asha@example.com","password":"wrong"}`)

		testutil.AssertErrorResponse(t, rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 on missing password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"asha@example.com"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	t.Run("returns 200 when the email is sent", func(t *testing.T) {
		var got string
		svc := &mockUserService{
			forgotPasswordFn: func(_ context.Context, email string) error {
				got = email
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "POST", "/auth/forgotpassword", `{"email":"asha@example.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["success"] != true || result["data"] != "Email sent" {
			t.Errorf("unexpected body: %v", result)
		}
		if got != "asha@example.com" {
			t.Errorf("expected email to reach the service, got %q", got)
		}
	})

	t.Run("returns 404 on unknown email", func(t *testing.T) {
		svc := &mockUserService{
			forgotPasswordFn: func(_ context.Context, _ string) error { return apperrors.ErrUserNotFound },
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "POST", "/auth/forgotpassword", `{"email":"nobody@example.com"}`)

		testutil.AssertErrorResponse(t, rec, http.StatusNotFound, "USER_NOT_FOUND")
	})

	t.Run("returns 500 when delivery fails", func(t *testing.T) {
		svc := &mockUserService{
			forgotPasswordFn: func(_ context.Context, _ string) error { return apperrors.ErrEmailSend },
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "POST", "/auth/forgotpassword", `{"email":"asha@example.com"}`)

		testutil.AssertErrorResponse(t, rec, http.StatusInternalServerError, "EMAIL_SEND_FAILED")
	})
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	t.Run("returns 201 and passes the path token", func(t *testing.T) {
		var gotToken, gotPassword string
		svc := &mockUserService{
			resetPasswordFn: func(token, newPassword string) error {
				gotToken, gotPassword = token, newPassword
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "PUT", "/auth/resetpassword/abc123", `{"password":"newpass456"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["success"] != true || result["message"] != "Password Updated" {
			t.Errorf("unexpected body: %v", result)
		}
		if gotToken != "abc123" || gotPassword != "newpass456" {
			t.Errorf("unexpected call (%q, %q)", gotToken, gotPassword)
		}
	})

	t.Run("returns 400 on invalid token", func(t *testing.T) {
		svc := &mockUserService{
			resetPasswordFn: func(_, _ string) error { return apperrors.ErrInvalidResetToken },
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "PUT", "/auth/resetpassword/expired", `{"password":"newpass456"}`)

		testutil.AssertErrorResponse(t, rec, http.StatusBadRequest, "INVALID_RESET_TOKEN")
	})

	t.Run("returns 400 on missing password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testTokens()))

		rec := doRequest(r, "PUT", "/auth/resetpassword/abc123", `{}`)

		testutil.AssertErrorResponse(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("returns the user without password", func(t *testing.T) {
		svc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, Name: "Asha", Email: "asha@example.com", Password: "hash"}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

		rec := doRequest(r, "GET", "/auth/me", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["id"] != testUserID {
			t.Errorf("expected id %s, got %v", testUserID, result["id"])
		}
		if _, ok := result["password"]; ok {
			t.Error("expected password to be omitted")
		}
	})

	t.Run("returns 401 without user", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testTokens()))

		rec := doRequest(r, "GET", "/anonymous/me", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Count(t *testing.T) {
	svc := &mockUserService{countUsersFn: func() (int64, error) { return 42, nil }}
	r := setupAuthRouter(NewAuthHandler(svc, testTokens()))

	rec := doRequest(r, "GET", "/auth/count", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := parseJSON(t, rec)["count"].(float64); got != 42 {
		t.Errorf("expected count 42, got %v", got)
	}
}
