package services

import (
	"errors"
	"fmt"
	"time"

	"catalog/internal/config"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login, without saying which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned for a token that is malformed, expired, badly
// signed or not issued for the administrator.
var ErrInvalidToken = errors.New("invalid token")

// AuthService authenticates the catalog administrator and issues JWT tokens.
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	tokenDurat   time.Duration
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService from the admin configuration.
func NewAuthService(cfg config.AuthConfig, logger zerolog.Logger) *AuthService {
	return &AuthService{
		username:     cfg.AdminUsername,
		passwordHash: []byte(cfg.AdminPasswordHash),
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenDurat:   cfg.TokenTTL,
		logger:       logger.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword returns the bcrypt hash to configure as the admin password hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// LoginUser authenticates the administrator and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	if username != s.username {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      username,
		"username": username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken returns the claims of an unexpired HS256 token issued for the
// configured administrator.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.signingKey)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if username, _ := claims["username"].(string); username != s.username {
		s.logger.Debug().Interface("username", claims["username"]).Msg("token issued for another user")
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) signingKey(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return s.jwtSecret, nil
}
