package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "orbit/internal/errors"
	"orbit/internal/middleware"
	"orbit/internal/models"
	"orbit/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService services.UserServicer
	tokens      *middleware.TokenManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, tokens *middleware.TokenManager) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens}
}

// SignupRequest represents the registration request payload
type SignupRequest struct {
	Name     string `json:"name" binding:"required,not_blank,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents the password reset request payload
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,max=128"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// ForgotPasswordResponse confirms that a reset email went out
type ForgotPasswordResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
}

// ResetPasswordResponse confirms a password change
type ResetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CountResponse reports how many accounts exist
type CountResponse struct {
	Count int64 `json:"count"`
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(status, AuthResponse{ID: user.ID, Name: user.Name, Email: user.Email, Token: token})
}

// Signup handles user registration
// @Summary     Register a new user
// @Description Create an account with an empty ledger and return a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignupRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input or user already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// ForgotPassword starts the reset flow
// @Summary     Request a password reset
// @Description Email a single-use reset link valid for ten minutes
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} ForgotPasswordResponse "Email sent"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Email not found"
// @Failure     500 {object} ErrorResponse "Email could not be sent"
// @Router      /auth/forgotpassword [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.userService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ForgotPasswordResponse{Success: true, Data: "Email sent"})
}

// ResetPassword completes the reset flow
// @Summary     Reset password
// @Description Set a new password using the token from the reset email
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       resetToken path string               true "Reset token"
// @Param       request    body ResetPasswordRequest true "New password"
// @Success     201 {object} ResetPasswordResponse "Password updated"
// @Failure     400 {object} ErrorResponse "Invalid or expired token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/resetpassword/{resetToken} [put]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.userService.ResetPassword(c.Param("resetToken"), req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResetPasswordResponse{Success: true, Message: "Password Updated"})
}

// Me returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's account without the password
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Count reports the number of registered accounts
// @Summary     Count users
// @Tags        auth
// @Produce     json
// @Success     200 {object} CountResponse "Number of accounts"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/count [get]
func (h *AuthHandler) Count(c *gin.Context) {
	n, err := h.userService.CountUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}
