package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "ar-car-rentals"

type Authenticator interface {
	Login(email, password string) (Token, error)
	Verify(token string) (*Claims, error)
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Service struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(email, passwordHash, secret string, ttl time.Duration, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &Service{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) configured() error {
	if len(s.secret) == 0 || s.email == "" || len(s.passwordHash) == 0 {
		return fmt.Errorf("%w: admin credentials or JWT secret missing", domain.ErrConfig)
	}
	return nil
}

// Login checks the configured admin credentials and issues an HS256 token.
// A wrong email and a wrong password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (Token, error) {
	if err := s.configured(); err != nil {
		return Token{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !emailOK || passErr != nil {
		return Token{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email: s.email,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("%w: sign token: %v", domain.ErrConfig, err)
	}
	return Token{AccessToken: signed, ExpiresAt: exp.UTC()}, nil
}

func (s *Service) Verify(token string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: JWT secret missing", domain.ErrConfig)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Role != "admin" {
		return nil, fmt.Errorf("%w: not an admin token", domain.ErrUnauthorized)
	}
	return claims, nil
}

// HashPassword produces the bcrypt hash expected in admin.password_hash.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

var _ Authenticator = (*Service)(nil)
