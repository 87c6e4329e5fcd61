package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/security"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/usecase"
)

type singleUserRepo struct {
	user domain.User
}

func (r *singleUserRepo) Create(context.Context, domain.User) error { return nil }

func (r *singleUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if id == r.user.ID {
		copied := r.user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *singleUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *singleUserRepo) GetByIdentifier(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *singleUserRepo) List(context.Context, port.UserFilter) ([]domain.User, error) {
	return nil, nil
}

func (r *singleUserRepo) Count(context.Context, port.UserFilter) (int, error) { return 0, nil }

func (r *singleUserRepo) Update(context.Context, domain.User) error { return nil }

func (r *singleUserRepo) UpdatePassword(context.Context, string, string, time.Time) error {
	return nil
}

func (r *singleUserRepo) Delete(context.Context, string) error { return nil }

func newAuthFixture(t *testing.T) (*usecase.AuthService, *security.TokenCodec, domain.User) {
	t.Helper()
	role := domain.Role{ID: "role-manager", Name: domain.RoleManager}
	user := domain.User{ID: "user-1", Username: "jdoe", RoleID: role.ID, Role: &role}

	codec, err := security.NewTokenCodec("middleware-test-secret", "crm-test", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	svc := usecase.NewAuthService(&singleUserRepo{user: user}, codec, nil, zaptest.NewLogger(t))
	return svc, codec, user
}

func protectedRouter(svc *usecase.AuthService, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(EnrichContext())

	chain := []gin.HandlerFunc{RequireAuth(svc)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(svc, roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		user, _ := AuthenticatedUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})

	router.GET("/protected", chain...)
	return router
}

func getProtected(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	svc, codec, user := newAuthFixture(t)
	router := protectedRouter(svc)

	token, err := codec.IssueAccess(user.ID, user.RoleName())
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	rec := getProtected(router, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	router := protectedRouter(svc)

	if rec := getProtected(router, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	svc, codec, user := newAuthFixture(t)
	router := protectedRouter(svc)

	token, err := codec.IssueAccess(user.ID, user.RoleName())
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	for _, header := range []string{"Basic " + token, token, "Bearer "} {
		if rec := getProtected(router, header); rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	router := protectedRouter(svc)

	if rec := getProtected(router, "Bearer not-a-token"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRoleForbidsWrongRole(t *testing.T) {
	svc, codec, user := newAuthFixture(t)
	router := protectedRouter(svc, domain.RoleAdmin)

	token, err := codec.IssueAccess(user.ID, user.RoleName())
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	if rec := getProtected(router, "Bearer "+token); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	svc, codec, user := newAuthFixture(t)
	router := protectedRouter(svc, domain.RoleAdmin, domain.RoleManager)

	token, err := codec.IssueAccess(user.ID, user.RoleName())
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	if rec := getProtected(router, "Bearer "+token); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
