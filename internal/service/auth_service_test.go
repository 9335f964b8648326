package service

import (
	"context"
	"testing"

	"github.com/spec-kit/support-crm/internal/config"
	"github.com/spec-kit/support-crm/internal/domain"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := &fakeUserRepo{users: map[string]*domain.User{}}
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4, // bcrypt.MinCost keeps the suite fast
	}, users)
	return svc, users
}

func TestRegisterCreatesCustomer(t *testing.T) {
	svc, _ := newAuthFixture()

	user, token, exp, err := svc.Register(context.Background(), "Dana", "dana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleCustomer {
		t.Errorf("role = %q, want customer", user.Role)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Error("password stored without hashing")
	}
	if token == "" || exp.IsZero() {
		t.Error("missing token or expiry")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Dana", "dana@example.com", "s3cret"); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, _, _, err := svc.Register(ctx, "Other", "dana@example.com", "different")
	var domainErr *apperrors.DomainError
	if !asDomainError(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Dana", "dana@example.com", "s3cret"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, token, _, err := svc.Login(ctx, "dana@example.com", "s3cret"); err != nil || token == "" {
		t.Fatalf("Login: token=%q err=%v", token, err)
	}

	var domainErr *apperrors.DomainError
	if _, _, _, err := svc.Login(ctx, "dana@example.com", "wrong"); !asDomainError(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Fatalf("wrong password: error = %v, want unauthorized", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); !asDomainError(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Fatalf("unknown email: error = %v, want unauthorized", err)
	}
}

func TestChangeRole(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()
	users.users["u1"] = &domain.User{ID: "u1", Role: domain.RoleCustomer}

	if err := svc.ChangeRole(ctx, "u1", domain.RoleAgent); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if users.users["u1"].Role != domain.RoleAgent {
		t.Errorf("role = %q, want agent", users.users["u1"].Role)
	}

	if err := svc.ChangeRole(ctx, "u1", "superuser"); !apperrors.IsValidation(err) {
		t.Fatalf("invalid role: error = %v, want validation error", err)
	}

	var domainErr *apperrors.DomainError
	if err := svc.ChangeRole(ctx, "missing", domain.RoleAgent); !asDomainError(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("missing user: error = %v, want not found", err)
	}
}
