package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"rewardbase/internal/caching"
	"rewardbase/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes for one-time email tokens
const (
	TokenPurposeVerifyEmail   = "verify_email"
	TokenPurposeResetPassword = "reset_password"
)

// AuthService issues and validates session tokens and one-time email tokens.
// Session tokens are opaque to the client; roles are never embedded in them
// and are re-resolved server-side on every request.
type AuthService interface {
	GenerateSessionToken(ctx context.Context, userID uuid.UUID, remember bool) (*models.TokenResponse, error)
	ValidateSessionToken(ctx context.Context, token string) (uuid.UUID, error)
	RevokeSessionToken(ctx context.Context, token string) error

	IssueEmailToken(ctx context.Context, purpose string, userID uuid.UUID, ttl time.Duration) (string, error)
	ConsumeEmailToken(ctx context.Context, purpose, token string) (uuid.UUID, error)
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	sessionTTL time.Duration
}

// SessionClaims represents JWT claims on the session token
type SessionClaims struct {
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, sessionTTL time.Duration) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

// GenerateSessionToken signs a session JWT for the user. Remember-me sessions
// last 30 days, others the configured session lifetime.
func (s *authService) GenerateSessionToken(ctx context.Context, userID uuid.UUID, remember bool) (*models.TokenResponse, error) {
	now := time.Now()
	ttl := s.sessionTTL
	if remember {
		ttl = 30 * 24 * time.Hour
	}
	tokenID := uuid.NewString()

	claims := SessionClaims{
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "rewardbase-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"rewardbase-portal"},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %v", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
		UserID:      userID.String(),
		IssuedAt:    now,
	}, nil
}

// ValidateSessionToken verifies the signature and expiry, rejects revoked
// tokens and returns the bound user ID.
func (s *authService) ValidateSessionToken(ctx context.Context, token string) (uuid.UUID, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := jwtToken.Claims.(*SessionClaims)
	if !ok || !jwtToken.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}

	denied, err := s.cacheSvc.GetString(ctx, fmt.Sprintf("token_denylist:%s", claims.TokenID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("denylist lookup failed: %v", err)
	}
	if denied != "" {
		return uuid.Nil, fmt.Errorf("token revoked")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject in token")
	}
	return userID, nil
}

// RevokeSessionToken denylists the token until its natural expiry.
func (s *authService) RevokeSessionToken(ctx context.Context, token string) error {
	jwtToken, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("cannot revoke invalid token: %v", err)
	}
	claims, ok := jwtToken.Claims.(*SessionClaims)
	if !ok || !jwtToken.Valid {
		return fmt.Errorf("cannot revoke invalid token")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	key := fmt.Sprintf("token_denylist:%s", claims.TokenID)
	if err := s.cacheSvc.SetString(ctx, key, "revoked", ttl); err != nil {
		log.Printf("Failed to denylist token: %v", err)
		return err
	}
	return nil
}

// IssueEmailToken creates a one-time token for email verification or
// password reset. Only the hash is stored.
func (s *authService) IssueEmailToken(ctx context.Context, purpose string, userID uuid.UUID, ttl time.Duration) (string, error) {
	token := generateSecureToken()
	key := fmt.Sprintf("%s:%s", purpose, hashToken(token))
	if err := s.cacheSvc.SetString(ctx, key, userID.String(), ttl); err != nil {
		return "", fmt.Errorf("failed to store %s token: %v", purpose, err)
	}
	return token, nil
}

// ConsumeEmailToken resolves and invalidates a one-time token.
func (s *authService) ConsumeEmailToken(ctx context.Context, purpose, token string) (uuid.UUID, error) {
	key := fmt.Sprintf("%s:%s", purpose, hashToken(token))
	stored, err := s.cacheSvc.GetString(ctx, key)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token lookup failed: %v", err)
	}
	if stored == "" {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}

	userID, err := uuid.Parse(stored)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token data")
	}

	if err := s.cacheSvc.Delete(ctx, key); err != nil {
		log.Printf("Failed to delete consumed token: %v", err)
	}
	return userID, nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
