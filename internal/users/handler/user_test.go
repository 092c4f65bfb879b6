package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"parkbook/internal/access"
	userserrors "parkbook/internal/users/errors"
	httputil "parkbook/pkg/http"
	"parkbook/pkg/logger"
	"parkbook/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockUserService struct {
	loginFunc   func(ctx context.Context, req *model.LoginRequest) (*model.AuthToken, error)
	profileFunc func(ctx context.Context, caller access.Identity) (*model.Profile, error)
}

func (m *mockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	return &model.User{ID: "u1", Login: req.Login}, nil
}

func (m *mockUserService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthToken, error) {
	return m.loginFunc(ctx, req)
}

func (m *mockUserService) Profile(ctx context.Context, caller access.Identity) (*model.Profile, error) {
	return m.profileFunc(ctx, caller)
}

func (m *mockUserService) EnsureAdmin(ctx context.Context, login, password string) error {
	return nil
}

func newRouter(svc *mockUserService) *httprouter.Router {
	router := httprouter.New()
	NewUserHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := &mockUserService{
		loginFunc: func(ctx context.Context, req *model.LoginRequest) (*model.AuthToken, error) {
			return nil, userserrors.InvalidCredentials()
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"login":"a@b.c","password":"x"}`))
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var resp httputil.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != userserrors.CodeInvalidCredentials {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestRegisterDoesNotEchoPassword(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"login":"cleo@example.com","password":"correct horse","name":"Cleo"}`))
	w := httptest.NewRecorder()
	newRouter(&mockUserService{}).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "correct horse") || strings.Contains(w.Body.String(), "password") {
		t.Errorf("password leaked: %s", w.Body.String())
	}
}

func TestMe(t *testing.T) {
	svc := &mockUserService{
		profileFunc: func(ctx context.Context, caller access.Identity) (*model.Profile, error) {
			return &model.Profile{User: &model.User{ID: caller.UserID}, UserCount: 3}, nil
		},
	}
	router := newRouter(svc)

	anon := httptest.NewRecorder()
	router.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if anon.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", anon.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(access.WithIdentity(req.Context(), access.Identity{UserID: "u1", Roles: []access.Role{access.RoleVisitor}}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"user_count":3`) {
		t.Errorf("status = %d body %s", w.Code, w.Body.String())
	}
}
