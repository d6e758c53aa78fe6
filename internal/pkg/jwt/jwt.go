package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

type Signer struct {
	secret []byte
	method *jwtlib.SigningMethodHMAC
	ttl    time.Duration
}

func NewSigner(secret []byte, alg string, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if alg == "" {
		alg = jwtlib.SigningMethodHS256.Alg()
	}
	method, ok := jwtlib.GetSigningMethod(strings.ToUpper(alg)).(*jwtlib.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", alg)
	}
	return &Signer{secret: secret, method: method, ttl: ttl}, nil
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

func (s *Signer) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

func (s *Signer) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{s.method.Alg()}), jwtlib.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
