package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

const refreshTokenType = "refresh"

// Claims represents the authorization claims transmitted via a JWT.
// Subject carries the user ID. Type is set to "refresh" on refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	SchoolID string `json:"schoolId,omitempty"`
	Role     string `json:"role,omitempty"`
	Type     string `json:"type,omitempty"`
}

func (c Claims) IsRefresh() bool { return c.Type == refreshTokenType }

// TokenPair is what a successful login or refresh returns: a short-lived
// access token and a long-lived, rotating refresh token.
type TokenPair struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (svc *Service) accessClaims(usr user.User, now time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    svc.issuer,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(svc.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		SchoolID: usr.SchoolID,
		Role:     usr.Role,
	}
}

func (svc *Service) refreshClaims(usr user.User, now time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    svc.issuer,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(svc.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(), // keeps rotated tokens distinct
		},
		Type: refreshTokenType,
	}
}

func (svc *Service) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(svc.secret)
	return ss, errors.Wrap(err, "signing token")
}

func (svc *Service) parse(tokenString string) (Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return svc.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}

func (svc *Service) issuePair(usr user.User) (TokenPair, error) {
	now := svc.nowFunc().UTC()

	access, err := svc.sign(svc.accessClaims(usr, now))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := svc.sign(svc.refreshClaims(usr, now))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(svc.accessTTL),
	}, nil
}
