package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"github.com/golang-jwt/jwt/v5"
)

type Identity struct {
	Name     string     `json:"name"`
	Email    string     `json:"email,omitempty"`
	Role     model.Role `json:"role"`
	BranchID string     `json:"branch,omitempty"`
}

// IdentityClaims carries the profile id in the subject.
type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

// DecodeSecret accepts the base64 signing secret stored in configuration.
func DecodeSecret(base64Secret string) ([]byte, error) {
	if base64Secret == "" {
		return nil, errors.New("signing secret is not configured")
	}
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	return secret, nil
}

func CreateIdentityToken(profile *model.Profile, base64Secret, issuer string, ttl time.Duration) (string, error) {
	secretBytes, err := DecodeSecret(base64Secret)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := IdentityClaims{
		Identity: Identity{
			Name:     profile.Name,
			Email:    profile.Email,
			Role:     profile.Role,
			BranchID: profile.Branch(),
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretBytes)
}

// ParseIdentityToken verifies signature, expiry and issuer.
func ParseIdentityToken(tokenStr string, secret []byte, issuer string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", jwt.ErrTokenInvalidClaims, claims.Role)
	}
	return claims, nil
}
