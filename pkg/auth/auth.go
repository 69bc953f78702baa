// Package auth implements registration, login and bearer-token validation
// on top of a user repository.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"deliveryflow/pkg/user"
)

// Validation and credential errors surfaced to the API layer.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserExists         = errors.New("a user with this email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters")
	ErrInvalidName        = errors.New("name must be at least 2 characters")
	ErrMissingSecret      = errors.New("jwt signing secret is not configured")
)

const (
	bcryptCost     = 12
	tokenExpiresIn = 7 * 24 * time.Hour
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Response is returned on successful registration or login.
type Response struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Service handles account management and token issuance.
type Service struct {
	repo   user.Repository
	secret []byte
}

// New constructs the auth service. secret signs and verifies HS256 tokens;
// an empty secret is refused so tokens can never be forged with a known key.
func New(repo user.Repository, secret []byte) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	return &Service{repo: repo, secret: secret}, nil
}

// Register validates the request, creates the account and returns a signed
// token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Response, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if len(req.Name) < 2 {
		return nil, ErrInvalidName
	}
	if !emailRegex.MatchString(req.Email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrInvalidPassword
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &user.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Notifications: true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.generateToken(u)
	if err != nil {
		return nil, err
	}
	return &Response{Token: token, User: u}, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Response, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(u)
	if err != nil {
		return nil, err
	}
	return &Response{Token: token, User: u}, nil
}

// ValidateToken parses and verifies a bearer token and returns the user it
// belongs to.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*user.User, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	u, err := s.repo.GetByID(ctx, int64(sub))
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return u, nil
}

// UpdateProfile applies a profile update for the given user.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, up user.Update) (*user.User, error) {
	if up.Name != nil && len(strings.TrimSpace(*up.Name)) < 2 {
		return nil, ErrInvalidName
	}
	u, err := s.repo.Update(ctx, userID, up)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

func (s *Service) generateToken(u *user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"exp":     time.Now().Add(tokenExpiresIn).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
