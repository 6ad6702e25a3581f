package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTService emite y valida los tokens de operador para las rutas que escriben.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type OperatorClaims struct {
	Operator  string `json:"op"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

const operatorTokenType = "operator"

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "employee-review",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue firma un token HS256 para el operador indicado.
func (s *JWTService) Issue(operator string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return "", ErrJWTInvalid
	}
	now := s.now()
	claims := OperatorClaims{
		Operator:  operator,
		TokenType: operatorTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) Parse(tokenString string) (OperatorClaims, error) {
	if len(s.secret) == 0 {
		return OperatorClaims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return OperatorClaims{}, ErrJWTInvalid
	}
	var claims OperatorClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return OperatorClaims{}, ErrJWTExpired
		}
		return OperatorClaims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return OperatorClaims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims OperatorClaims) bool {
	if claims.TokenType != operatorTokenType {
		return false
	}
	if strings.TrimSpace(claims.Operator) == "" || claims.Subject != claims.Operator {
		return false
	}
	return claims.Issuer == s.issuer
}
