package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trustlens/internal/api"
	"trustlens/internal/domain"
)

// SessionStore agrupa las operaciones del Session Store que disparan los
// formularios de la aplicacion.
type SessionStore interface {
	SessionReader
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, input api.RegisterInput) error
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, patch domain.UserPatch)
	RefreshUser(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context) error
}

// AuthHandler conecta los formularios con el Session Store.
type AuthHandler struct {
	logger *zap.Logger
	store  SessionStore
	pages  *pageSet
}

func NewAuthHandler(logger *zap.Logger, store SessionStore, pages *pageSet) *AuthHandler {
	return &AuthHandler{logger: logger, store: store, pages: pages}
}

// Login maneja POST /login. El Store ya emitio el aviso de exito o fallo;
// aca solo se decide a donde navegar.
func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if email == "" || password == "" {
		h.pages.render(c, "login", http.StatusBadRequest)
		return
	}

	if err := h.store.Login(c.Request.Context(), email, password); err != nil {
		h.pages.render(c, "login", http.StatusUnauthorized)
		return
	}
	c.Redirect(http.StatusFound, dashboardPath)
}

// Register maneja POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	input := api.RegisterInput{
		Email:     strings.TrimSpace(c.PostForm("email")),
		Password:  c.PostForm("password"),
		FirstName: strings.TrimSpace(c.PostForm("firstName")),
		LastName:  strings.TrimSpace(c.PostForm("lastName")),
		Company:   strings.TrimSpace(c.PostForm("company")),
	}
	if input.Email == "" || input.Password == "" {
		h.pages.render(c, "register", http.StatusBadRequest)
		return
	}

	if err := h.store.Register(c.Request.Context(), input); err != nil {
		h.pages.render(c, "register", http.StatusBadRequest)
		return
	}
	c.Redirect(http.StatusFound, dashboardPath)
}

// Logout maneja POST /logout. Nunca falla.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.store.Logout(c.Request.Context())
	c.Redirect(http.StatusFound, "/")
}

// ForgotPassword maneja POST /forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		h.pages.render(c, "forgot-password", http.StatusBadRequest)
		return
	}
	if err := h.store.ForgotPassword(c.Request.Context(), email); err != nil {
		h.pages.render(c, "forgot-password", http.StatusBadRequest)
		return
	}
	c.Redirect(http.StatusFound, loginPath)
}

// ResetPassword maneja POST /reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := strings.TrimSpace(c.PostForm("token"))
	password := c.PostForm("password")
	if token == "" || password == "" {
		h.pages.render(c, "reset-password", http.StatusBadRequest)
		return
	}
	if err := h.store.ResetPassword(c.Request.Context(), token, password); err != nil {
		h.pages.render(c, "reset-password", http.StatusBadRequest)
		return
	}
	c.Redirect(http.StatusFound, loginPath)
}

// Dashboard maneja GET /dashboard. Refresca la identidad contra la API para
// mostrar contadores de uso vigentes; un refresh fallido ya forzo el logout
// en el Store, asi que solo queda volver al login.
func (h *AuthHandler) Dashboard(c *gin.Context) {
	if err := h.store.RefreshUser(c.Request.Context()); err != nil {
		c.Redirect(http.StatusFound, loginPath)
		return
	}
	h.pages.render(c, "dashboard", http.StatusOK)
}

// VerifyEmailPage maneja GET /verify-email. Con ?token= intenta la
// verificacion antes de renderizar; sin token solo muestra el estado.
func (h *AuthHandler) VerifyEmailPage(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token != "" {
		// El resultado se comunica via avisos; la pagina se muestra igual.
		_ = h.store.VerifyEmail(c.Request.Context(), token)
	}
	h.pages.render(c, "verify-email", http.StatusOK)
}

// ResendVerification maneja POST /resend-verification.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	_ = h.store.ResendVerification(c.Request.Context())
	c.Redirect(http.StatusFound, "/verify-email")
}

// UpdateSettings maneja POST /settings con una actualizacion parcial local.
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	patch := domain.UserPatch{}
	if v, ok := c.GetPostForm("firstName"); ok {
		patch.FirstName = &v
	}
	if v, ok := c.GetPostForm("lastName"); ok {
		patch.LastName = &v
	}
	if v, ok := c.GetPostForm("company"); ok {
		patch.Company = &v
	}
	if v, ok := c.GetPostForm("bio"); ok {
		patch.Bio = &v
	}
	h.store.UpdateUser(c.Request.Context(), patch)
	c.Redirect(http.StatusFound, "/settings")
}
