package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/forvaidya/icomment/internal/domain"
)

type jwtClaims struct {
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWT validates HS256 tokens issued by the external identity provider.
type JWT struct {
	secret []byte
	issuer string
}

func NewJWT(secret, issuer string) *JWT {
	return &JWT{secret: []byte(secret), issuer: issuer}
}

func (r *JWT) Resolve(_ context.Context, tokenString string) (*Claims, error) {
	claims := &jwtClaims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}

	return &Claims{
		Subject:  claims.Subject,
		Username: username,
		Email:    claims.Email,
		Kind:     domain.UserKindFederated,
	}, nil
}
