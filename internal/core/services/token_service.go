package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidOperatorKey = errors.New("invalid operator key")

const operatorSubject = "operator"

// TokenService exchanges the configured operator key for a short-lived HS256
// token and validates tokens on the admin endpoints. There are no user
// accounts in this engine; the only principal is the operator.
type TokenService struct {
	secretKey       []byte
	issuer          string
	tokenDuration   time.Duration
	operatorKeyHash []byte
}

func NewTokenService(secretKey, issuer string, tokenDuration time.Duration, operatorKeyHash string) *TokenService {
	return &TokenService{
		secretKey:       []byte(secretKey),
		issuer:          issuer,
		tokenDuration:   tokenDuration,
		operatorKeyHash: []byte(operatorKeyHash),
	}
}

// Exchange verifies the presented operator key against the configured bcrypt
// hash and issues a token.
func (s *TokenService) Exchange(operatorKey string) (string, error) {
	if len(s.operatorKeyHash) == 0 {
		return "", ErrInvalidOperatorKey
	}
	if err := bcrypt.CompareHashAndPassword(s.operatorKeyHash, []byte(operatorKey)); err != nil {
		return "", ErrInvalidOperatorKey
	}
	return s.GenerateToken()
}

func (s *TokenService) GenerateToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": operatorSubject,
		"exp": time.Now().Add(s.tokenDuration).Unix(),
		"iat": time.Now().Unix(),
		"iss": s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("token service: failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if iss, ok := claims["iss"].(string); !ok || iss != s.issuer {
			return "", fmt.Errorf("invalid token issuer")
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub != operatorSubject {
			return "", fmt.Errorf("invalid token subject")
		}

		return sub, nil
	}

	return "", fmt.Errorf("invalid token claims")
}
