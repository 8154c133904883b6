package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityService validates identity tokens issued by an external identity
// provider against its published JWKS. Used for federated login.
type IdentityService interface {
	VerifyExternalToken(ctx context.Context, rawToken string) (*ExternalIdentity, error)
}

// ExternalIdentity is the subset of provider claims the portal cares about.
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

type identityService struct {
	jwks *keyfunc.JWKS
}

func NewIdentityService(jwksURL string) (IdentityService, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			log.Printf("WARN: JWKS refresh failed: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %v", jwksURL, err)
	}
	return &identityService{jwks: jwks}, nil
}

func (s *identityService) VerifyExternalToken(ctx context.Context, rawToken string) (*ExternalIdentity, error) {
	token, err := jwt.Parse(rawToken, s.jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("identity token validation failed: %v", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("identity token not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid identity token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("identity token missing subject")
	}
	email, _ := claims["email"].(string)
	emailVerified, _ := claims["email_verified"].(bool)

	return &ExternalIdentity{
		Subject:       sub,
		Email:         email,
		EmailVerified: emailVerified,
	}, nil
}
