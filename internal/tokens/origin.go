package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const OriginTTL = 365 * 24 * time.Hour

var ErrInvalidOrigin = errors.New("invalid origin token")

type OriginClaims struct {
	jwt.RegisteredClaims
}

func NewOrigin() string {
	return uuid.NewString()
}

func SignOrigin(origin string, secret []byte, exp time.Time) (string, error) {
	claims := OriginClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   origin,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func OriginFromToken(tokenStr string, secret []byte) (string, error) {
	var claims OriginClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", ErrInvalidOrigin
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidOrigin
	}
	return claims.Subject, nil
}
