package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/domain"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// newTestApp maps DomainError statuses the way the HTTP error middleware
// does, so gate responses carry their real status codes.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
}

func TestResolveAccess(t *testing.T) {
	cases := []struct {
		name     string
		role     domain.Role
		required domain.Role
		want     Access
	}{
		{"admin enters admin group", domain.RoleAdmin, domain.RoleAdmin, Allow},
		{"admin enters agent group", domain.RoleAdmin, domain.RoleAgent, Allow},
		{"admin enters customer group", domain.RoleAdmin, domain.RoleCustomer, Allow},
		{"agent enters agent group", domain.RoleAgent, domain.RoleAgent, Allow},
		{"agent denied admin group", domain.RoleAgent, domain.RoleAdmin, Deny},
		{"agent denied customer group", domain.RoleAgent, domain.RoleCustomer, Deny},
		{"customer enters customer group", domain.RoleCustomer, domain.RoleCustomer, Allow},
		{"customer denied agent group", domain.RoleCustomer, domain.RoleAgent, Deny},
		{"unknown role denied", domain.Role("manager"), domain.RoleAgent, Deny},
		{"empty role denied", domain.Role(""), domain.RoleCustomer, Deny},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveAccess(tc.role, tc.required); got != tc.want {
				t.Fatalf("ResolveAccess(%q, %q) = %v, want %v", tc.role, tc.required, got, tc.want)
			}
		})
	}
}

func TestHomeRoute(t *testing.T) {
	cases := []struct {
		role domain.Role
		want string
	}{
		{domain.RoleAdmin, "/overview"},
		{domain.RoleAgent, "/workspace"},
		{domain.RoleCustomer, "/dashboard"},
		{domain.Role(""), LoginRoute},
		{domain.Role("manager"), LoginRoute},
	}

	for _, tc := range cases {
		if got := HomeRoute(tc.role); got != tc.want {
			t.Errorf("HomeRoute(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}

// withPrincipal simulates the session resolver having loaded a user.
func withPrincipal(user *domain.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(principalKey, &Principal{User: user})
		}
		return c.Next()
	}
}

func TestGuardPageRedirects(t *testing.T) {
	cases := []struct {
		name         string
		user         *domain.User
		required     domain.Role
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "unauthenticated redirects to login",
			user:         nil,
			required:     domain.RoleAgent,
			wantStatus:   fiber.StatusFound,
			wantLocation: LoginRoute,
		},
		{
			name:         "agent on admin page bounces home",
			user:         &domain.User{ID: "u1", Role: domain.RoleAgent},
			required:     domain.RoleAdmin,
			wantStatus:   fiber.StatusFound,
			wantLocation: "/workspace",
		},
		{
			name:         "customer on agent page bounces home",
			user:         &domain.User{ID: "u2", Role: domain.RoleCustomer},
			required:     domain.RoleAgent,
			wantStatus:   fiber.StatusFound,
			wantLocation: "/dashboard",
		},
		{
			name:       "matching role passes",
			user:       &domain.User{ID: "u3", Role: domain.RoleAgent},
			required:   domain.RoleAgent,
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "admin passes any gate",
			user:       &domain.User{ID: "u4", Role: domain.RoleAdmin},
			required:   domain.RoleCustomer,
			wantStatus: fiber.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/page", withPrincipal(tc.user), GuardPage(tc.required), func(c *fiber.Ctx) error {
				return c.SendString("ok")
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/page", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantLocation != "" {
				if loc := resp.Header.Get("Location"); loc != tc.wantLocation {
					t.Fatalf("Location = %q, want %q", loc, tc.wantLocation)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name       string
		user       *domain.User
		allowed    []domain.Role
		wantStatus int
	}{
		{"no principal answers 401", nil, []domain.Role{domain.RoleAdmin}, fiber.StatusUnauthorized},
		{"wrong role answers 403", &domain.User{Role: domain.RoleCustomer}, []domain.Role{domain.RoleAdmin, domain.RoleAgent}, fiber.StatusForbidden},
		{"allowed role passes", &domain.User{Role: domain.RoleAgent}, []domain.Role{domain.RoleAdmin, domain.RoleAgent}, fiber.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/api/x", withPrincipal(tc.user), RequireRole(tc.allowed...), func(c *fiber.Ctx) error {
				return c.SendString("ok")
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/api/x", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}
