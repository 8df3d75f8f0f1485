package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trustlens/internal/api"
	"trustlens/internal/domain"
	"trustlens/internal/notify"
)

type stubStore struct {
	session       *domain.Session
	authenticated bool

	loginErr     error
	loginCalls   int
	logoutCalls  int
	refreshErr   error
	refreshCalls int
	verifyTokens []string
	resendCalls  int
	patches      []domain.UserPatch
}

func (s *stubStore) IsAuthenticated() bool { return s.authenticated }

func (s *stubStore) Current() (domain.Session, bool) {
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

func (s *stubStore) Login(_ context.Context, _, _ string) error {
	s.loginCalls++
	if s.loginErr != nil {
		return s.loginErr
	}
	s.session = &domain.Session{User: domain.User{ID: "u1", Email: "ana@example.com"}, Token: "tok"}
	s.authenticated = true
	return nil
}

func (s *stubStore) Register(ctx context.Context, _ api.RegisterInput) error {
	return s.Login(ctx, "", "")
}

func (s *stubStore) Logout(_ context.Context) {
	s.logoutCalls++
	s.session = nil
	s.authenticated = false
}

func (s *stubStore) UpdateUser(_ context.Context, patch domain.UserPatch) {
	s.patches = append(s.patches, patch)
}

func (s *stubStore) RefreshUser(_ context.Context) error {
	s.refreshCalls++
	if s.refreshErr != nil {
		s.session = nil
		s.authenticated = false
		return s.refreshErr
	}
	return nil
}

func (s *stubStore) ForgotPassword(_ context.Context, _ string) error { return nil }

func (s *stubStore) ResetPassword(_ context.Context, _, _ string) error { return nil }

func (s *stubStore) VerifyEmail(_ context.Context, token string) error {
	s.verifyTokens = append(s.verifyTokens, token)
	return nil
}

func (s *stubStore) ResendVerification(_ context.Context) error {
	s.resendCalls++
	return nil
}

func authenticatedStore(role domain.Role) *stubStore {
	return &stubStore{
		authenticated: true,
		session: &domain.Session{
			User:  domain.User{ID: "u1", Email: "ana@example.com", FirstName: "Ana", Role: role, Plan: domain.PlanFree},
			Token: "tok",
		},
	}
}

func setupRouter(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(zap.NewNop(), store, notify.NewFeed(10, zap.NewNop()))
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func doPostForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func TestGuard_GuestOnlyRedirectsWhenAuthenticated(t *testing.T) {
	router := setupRouter(authenticatedStore(domain.RoleUser))

	w := doGet(router, "/login")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %q", loc)
	}
}

func TestGuard_GuestOnlyRendersWhenUnauthenticated(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doGet(router, "/login")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Log in") {
		t.Fatalf("expected login page body")
	}
}

func TestGuard_ProtectedRedirectsToLogin(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doGet(router, "/dashboard")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestGuard_ProtectedRendersWhenAuthenticated(t *testing.T) {
	router := setupRouter(authenticatedStore(domain.RoleUser))

	w := doGet(router, "/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Dashboard") {
		t.Fatalf("expected dashboard body")
	}
}

func TestRouter_DashboardRefreshesIdentity(t *testing.T) {
	store := authenticatedStore(domain.RoleUser)
	router := setupRouter(store)

	w := doGet(router, "/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.refreshCalls != 1 {
		t.Fatalf("expected one refresh call, got %d", store.refreshCalls)
	}
}

func TestRouter_DashboardFailedRefreshRedirectsToLogin(t *testing.T) {
	store := authenticatedStore(domain.RoleUser)
	store.refreshErr = &api.Error{Status: 401, Message: "invalid token"}
	router := setupRouter(store)

	w := doGet(router, "/dashboard")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestGuard_AdminDeniedForOrdinaryRole(t *testing.T) {
	router := setupRouter(authenticatedStore(domain.RoleUser))

	w := doGet(router, "/admin")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Access denied") {
		t.Fatalf("expected denied page")
	}
}

func TestGuard_AdminAllowedForAdminRole(t *testing.T) {
	router := setupRouter(authenticatedStore(domain.RoleAdmin))

	w := doGet(router, "/admin")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGuard_AdminUnauthenticatedRedirectsToLogin(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doGet(router, "/admin")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestRouter_UnknownPathRendersNotFoundWithoutRedirect(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doGet(router, "/unknown-path")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "" {
		t.Fatalf("expected no redirect, got %q", loc)
	}
	if !strings.Contains(w.Body.String(), "Page not found") {
		t.Fatalf("expected not-found body")
	}
}

func TestRouter_PublicPagesVisibleEitherWay(t *testing.T) {
	for _, store := range []*stubStore{{}, authenticatedStore(domain.RoleUser)} {
		router := setupRouter(store)
		w := doGet(router, "/pricing")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for /pricing, got %d", w.Code)
		}
	}
}

func TestRouter_LoginFormSuccessRedirectsToDashboard(t *testing.T) {
	store := &stubStore{}
	router := setupRouter(store)

	w := doPostForm(router, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %q", loc)
	}
	if store.loginCalls != 1 {
		t.Fatalf("expected one login call, got %d", store.loginCalls)
	}
}

func TestRouter_LoginFormFailureStaysOnLogin(t *testing.T) {
	store := &stubStore{loginErr: &api.Error{Status: 401, Message: "invalid credentials"}}
	router := setupRouter(store)

	w := doPostForm(router, "/login", url.Values{"email": {"ana@example.com"}, "password": {"nope"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Log in") {
		t.Fatalf("expected login page re-rendered")
	}
}

func TestRouter_LogoutRedirectsHome(t *testing.T) {
	store := authenticatedStore(domain.RoleUser)
	router := setupRouter(store)

	w := doPostForm(router, "/logout", url.Values{})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	if store.logoutCalls != 1 {
		t.Fatalf("expected logout call")
	}
}

func TestRouter_VerifyEmailWithTokenTriggersVerification(t *testing.T) {
	store := authenticatedStore(domain.RoleUser)
	router := setupRouter(store)

	w := doGet(router, "/verify-email?token=abc123")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(store.verifyTokens) != 1 || store.verifyTokens[0] != "abc123" {
		t.Fatalf("expected verification with token, got %v", store.verifyTokens)
	}
}

func TestRouter_VerifyEmailWithoutTokenJustRenders(t *testing.T) {
	store := &stubStore{}
	router := setupRouter(store)

	w := doGet(router, "/verify-email")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(store.verifyTokens) != 0 {
		t.Fatalf("expected no verification call")
	}
}

func TestRouter_SettingsPostAppliesPatch(t *testing.T) {
	store := authenticatedStore(domain.RoleUser)
	router := setupRouter(store)

	w := doPostForm(router, "/settings", url.Values{"bio": {"reviewer"}})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if len(store.patches) != 1 {
		t.Fatalf("expected one patch, got %d", len(store.patches))
	}
	patch := store.patches[0]
	if patch.Bio == nil || *patch.Bio != "reviewer" {
		t.Fatalf("expected bio patched, got %+v", patch)
	}
	if patch.FirstName != nil {
		t.Fatalf("expected absent fields untouched")
	}
}

func TestRoutes_DeclaredOnce(t *testing.T) {
	seen := map[string]bool{}
	for _, route := range Routes() {
		if seen[route.Path] {
			t.Fatalf("route %q declared twice", route.Path)
		}
		seen[route.Path] = true
	}
}
