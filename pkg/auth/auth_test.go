package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"deliveryflow/pkg/user"
	"deliveryflow/pkg/user/memory"
)

var secret = []byte("test-secret")

func newService(t *testing.T, repo user.Repository) *Service {
	t.Helper()
	svc, err := New(repo, secret)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:            "Anna",
		Email:           "anna@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}
}

func TestRegisterLoginValidate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.New())

	reg, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Token == "" || reg.User.ID == 0 {
		t.Fatalf("expected token and user id, got %+v", reg)
	}
	if reg.User.PasswordHash == "correct-horse" {
		t.Fatal("password stored in plain text")
	}

	login, err := svc.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, err := svc.ValidateToken(ctx, login.Token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if u.ID != reg.User.ID {
		t.Fatalf("expected user %d from token, got %d", reg.User.ID, u.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.New())

	cases := []struct {
		name    string
		mutate  func(*RegisterRequest)
		wantErr error
	}{
		{"short name", func(r *RegisterRequest) { r.Name = "A" }, ErrInvalidName},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, ErrInvalidEmail},
		{"short password", func(r *RegisterRequest) { r.Password = "short"; r.ConfirmPassword = "short" }, ErrInvalidPassword},
		{"mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "different-pass" }, ErrPasswordMismatch},
	}
	for _, tc := range cases {
		req := validRegistration()
		tc.mutate(&req)
		if _, err := svc.Register(ctx, req); err != tc.wantErr {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.New())

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	req := validRegistration()
	req.Email = "ANNA@example.com" // emails are normalized to lower case
	if _, err := svc.Register(ctx, req); err != ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.New())

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "wrong-password"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever1"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.New())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.ValidateToken(ctx, token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := newService(t, repo)

	reg, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	other, err := New(repo, []byte("other-secret"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := other.ValidateToken(ctx, reg.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestNewRejectsEmptySecret(t *testing.T) {
	if _, err := New(memory.New(), nil); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret for nil secret, got %v", err)
	}
	if _, err := New(memory.New(), []byte("")); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret for empty secret, got %v", err)
	}
}

func TestValidateTokenRejectsEmptyKeySignature(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := newService(t, repo)

	reg, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": reg.User.ID,
		"email":   reg.User.Email,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte(""))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for empty-key signature, got %v", err)
	}
}
