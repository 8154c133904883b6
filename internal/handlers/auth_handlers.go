package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"rewardbase/internal/common"
	"rewardbase/internal/models"
	"rewardbase/internal/repositories"
	"rewardbase/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	verifyTokenTTL = 48 * time.Hour
	resetTokenTTL  = 1 * time.Hour
)

// AuthHandlers handles registration, login and account-recovery requests
type AuthHandlers struct {
	authService     services.AuthService
	identityService services.IdentityService
	userRepo        repositories.UserRepository
}

// NewAuthHandlers creates a new auth handlers instance. identityService may
// be nil when no external identity provider is configured.
func NewAuthHandlers(authService services.AuthService, identityService services.IdentityService, userRepo repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		authService:     authService,
		identityService: identityService,
		userRepo:        userRepo,
	}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	User *models.User `json:"user"`
	// The verification token is returned here for the mail sender to pick
	// up; clients never see it in production responses.
	VerificationToken string `json:"verification_token,omitempty"`
}

// Register handles user registration and issues an email-verification token
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateEmail(req.Email); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}
	if req.FirstName == "" || req.LastName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First name and last name are required")
	}

	existing, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check existing user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	var user *models.User
	switch {
	case existing != nil && existing.Status == models.UserStatusInvited:
		// Invited stub completing registration
		if err := h.userRepo.Activate(ctx, existing.ID, string(hashedPassword), req.FirstName, req.LastName); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to activate account")
		}
		existing.FirstName = req.FirstName
		existing.LastName = req.LastName
		existing.Status = models.UserStatusActive
		user = existing
	case existing != nil:
		return echo.NewHTTPError(http.StatusConflict, "User already exists")
	default:
		user = &models.User{
			ID:           uuid.New(),
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Status:       models.UserStatusActive,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := h.userRepo.Create(ctx, user); err != nil {
			log.Printf("Failed to create user %s: %v", user.Email, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
		}
	}

	verificationToken, err := h.authService.IssueEmailToken(ctx, services.TokenPurposeVerifyEmail, user.ID, verifyTokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue verification token")
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		User:              user,
		VerificationToken: verificationToken,
	})
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// Login verifies credentials, issues the session token and stores it in the
// session cookie
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	if user.PasswordHash == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account not properly initialized. Accept your invitation first.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	tokenResponse, err := h.authService.GenerateSessionToken(ctx, user.ID, req.Remember)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate session token")
	}
	if err := common.WriteSessionCookie(c, tokenResponse.AccessToken, req.Remember); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// FederatedLoginRequest carries an identity token from the external provider
type FederatedLoginRequest struct {
	IDToken  string `json:"id_token" validate:"required"`
	Remember bool   `json:"remember"`
}

// FederatedLogin exchanges a provider identity token for a portal session
func (h *AuthHandlers) FederatedLogin(c echo.Context) error {
	ctx := c.Request().Context()

	if h.identityService == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Federated login not configured")
	}

	var req FederatedLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.IDToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id_token is required")
	}

	identity, err := h.identityService.VerifyExternalToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid identity token")
	}
	if identity.Email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Identity token carries no email")
	}

	user, err := h.userRepo.GetByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusInternalServerError, "User lookup failed")
		}
		user = &models.User{
			ID:            uuid.New(),
			Email:         identity.Email,
			EmailVerified: identity.EmailVerified,
			Status:        models.UserStatusActive,
		}
		if err := h.userRepo.Create(ctx, user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
		}
	}

	tokenResponse, err := h.authService.GenerateSessionToken(ctx, user.ID, req.Remember)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate session token")
	}
	if err := common.WriteSessionCookie(c, tokenResponse.AccessToken, req.Remember); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// Logout revokes the current session and clears the cookie
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	result := common.ReadSessionCookie(c.Request())
	if result.State == common.StateSession {
		if err := h.authService.RevokeSessionToken(ctx, result.Token); err != nil {
			log.Printf("Failed to revoke session token: %v", err)
		}
	}
	common.ClearSessionCookie(c)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// VerifyEmailRequest represents the email verification payload
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail consumes the verification token and flips the user's flag
func (h *AuthHandlers) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	var req VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token is required")
	}

	userID, err := h.authService.ConsumeEmailToken(ctx, services.TokenPurposeVerifyEmail, req.Token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired verification token")
	}
	if err := h.userRepo.MarkEmailVerified(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify email")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Email verified",
	})
}

// RequestPasswordResetRequest represents the reset-request payload
type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset issues a reset token. Unknown emails get the same
// response as known ones.
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req RequestPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateEmail(req.Email); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}

	response := map[string]string{"message": "If the account exists, a reset link has been sent"}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusOK, response)
	}
	if _, err := h.authService.IssueEmailToken(ctx, services.TokenPurposeResetPassword, user.ID, resetTokenTTL); err != nil {
		log.Printf("Failed to issue reset token for %s: %v", user.ID, err)
	}

	return c.JSON(http.StatusOK, response)
}

// ResetPasswordRequest represents the password reset payload
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword consumes the reset token and replaces the password
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token is required")
	}
	if len(req.NewPassword) < 8 {
		return common.SendValidationError(c, "new_password", "password must be at least 8 characters")
	}

	userID, err := h.authService.ConsumeEmailToken(ctx, services.TokenPurposeResetPassword, req.Token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	if err := h.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Password updated",
	})
}

// Me handles getting current user profile
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}
