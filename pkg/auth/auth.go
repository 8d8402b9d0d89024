package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the operator password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims represents JWT claims for the single-operator session.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates operator tokens. This is a single-operator
// tool; there is one admin identity backed by one bcrypt hash.
type Service struct {
	secret          string
	passwordHash    string
	expirationHours int
}

// NewService creates a new auth service.
func NewService(secret, passwordHash string, expirationHours int) *Service {
	if expirationHours <= 0 {
		expirationHours = 72
	}
	return &Service{
		secret:          secret,
		passwordHash:    passwordHash,
		expirationHours: expirationHours,
	}
}

// Login verifies the operator password and returns a signed token.
func (s *Service) Login(password string) (string, error) {
	if s.passwordHash == "" || !CheckPassword(s.passwordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.GenerateToken()
}

// GenerateToken issues a fresh admin token.
func (s *Service) GenerateToken() (string, error) {
	claims := &Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * time.Duration(s.expirationHours))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// ValidateToken validates a token string and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a hashed password with a plain text password.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
