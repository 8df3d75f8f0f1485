package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"trustlens/internal/api"
	"trustlens/internal/domain"
	"trustlens/internal/notify"
)

// Authenticator define las operaciones remotas que el Store necesita de la
// API de autenticacion.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Register(ctx context.Context, input api.RegisterInput) (api.AuthResponse, error)
	Me(ctx context.Context) (domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context) error
}

var (
	ErrRateLimited      = errors.New("too many login attempts")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Mensajes fallback cuando el servidor no provee uno.
const (
	fallbackLogin    = "Login failed"
	fallbackRegister = "Registration failed"
	fallbackRefresh  = "Session expired, please log in again"
	fallbackForgot   = "Could not send reset email"
	fallbackReset    = "Password reset failed"
	fallbackVerify   = "Email verification failed"
	fallbackResend   = "Could not resend verification email"
)

// Store es el unico dueño del estado de sesion de la aplicacion. Se crea en
// el root y se inyecta en cada handler que lo necesita; no hay estado global.
//
// Invariante: user != nil si y solo si authenticated == true.
type Store struct {
	mu            sync.Mutex
	logger        *zap.Logger
	api           Authenticator
	storage       Storage
	notifier      notify.Notifier
	limiter       LoginRateLimiter
	user          *domain.User
	token         string
	authenticated bool
}

// NewStore construye el Store. limiter puede ser nil (sin limite de intentos).
func NewStore(logger *zap.Logger, apiClient Authenticator, storage Storage, notifier notify.Notifier, limiter LoginRateLimiter) *Store {
	return &Store{
		logger:   logger,
		api:      apiClient,
		storage:  storage,
		notifier: notifier,
		limiter:  limiter,
	}
}

// Restore carga el Record persistido y reconstituye la sesion antes de que
// el router atienda requests. Datos ausentes, corruptos o inconsistentes
// equivalen a "sin sesion"; nunca bloquean el arranque.
func (s *Store) Restore(ctx context.Context) {
	if s.storage == nil {
		return
	}
	rec, err := s.storage.Load(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("session restore failed", zap.Error(err))
		}
		return
	}
	if !rec.IsAuthenticated || rec.User == nil || rec.Token == "" {
		return
	}
	if tokenExpired(rec.Token, time.Now().UTC()) {
		if s.logger != nil {
			s.logger.Info("persisted credential expired, discarding session")
		}
		if err := s.storage.Clear(ctx); err != nil && s.logger != nil {
			s.logger.Warn("session clear failed", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	user := *rec.User
	s.user = &user
	s.token = rec.Token
	s.authenticated = true
	s.mu.Unlock()
}

// Login autentica contra la API y establece la sesion.
func (s *Store) Login(ctx context.Context, email, password string) error {
	// La clave del limiter se normaliza una sola vez, asi ambos backends
	// comparten la misma ventana para un mismo email.
	if s.limiter != nil && !s.limiter.Allow(normalizeEmail(email)) {
		s.notifyError("Too many login attempts, try again later")
		return ErrRateLimited
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.notifyError(api.ErrorMessage(err, fallbackLogin))
		return err
	}

	s.setSession(ctx, resp.User, resp.Token)
	s.notifySuccess("Welcome back, " + resp.User.DisplayName())
	return nil
}

// Register crea la cuenta y deja al usuario autenticado, igual que Login.
func (s *Store) Register(ctx context.Context, input api.RegisterInput) error {
	resp, err := s.api.Register(ctx, input)
	if err != nil {
		s.notifyError(api.ErrorMessage(err, fallbackRegister))
		return err
	}

	s.setSession(ctx, resp.User, resp.Token)
	s.notifySuccess("Account created")
	return nil
}

// Logout limpia credencial y sesion. Siempre tiene exito; repetirlo sobre un
// estado ya deslogueado no cambia nada.
func (s *Store) Logout(ctx context.Context) {
	s.clearSession(ctx)
	s.notifySuccess("Logged out")
}

// UpdateUser mezcla campos parciales sobre la sesion vigente. Sin sesion es
// un no-op. No llama a la API.
func (s *Store) UpdateUser(ctx context.Context, patch domain.UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	updated := patch.Apply(*s.user)
	s.user = &updated
	s.persistLocked(ctx)
}

// RefreshUser consulta la identidad actual a la API y reemplaza la sesion.
// Cualquier fallo se trata como credencial invalida: logout forzado y el
// error se propaga al caller.
func (s *Store) RefreshUser(ctx context.Context) error {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.clearSession(ctx)
		s.notifyError(api.ErrorMessage(err, fallbackRefresh))
		return err
	}

	s.mu.Lock()
	if !s.authenticated {
		// Un logout concurrente gana; no resucitar la sesion.
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.user = &user
	s.persistLocked(ctx)
	s.mu.Unlock()
	return nil
}

// ForgotPassword solicita el correo de restablecimiento.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	if err := s.api.ForgotPassword(ctx, email); err != nil {
		s.notifyError(api.ErrorMessage(err, fallbackForgot))
		return err
	}
	s.notifySuccess("Password reset email sent")
	return nil
}

// ResetPassword cambia la password con un token de restablecimiento.
func (s *Store) ResetPassword(ctx context.Context, token, password string) error {
	if err := s.api.ResetPassword(ctx, token, password); err != nil {
		s.notifyError(api.ErrorMessage(err, fallbackReset))
		return err
	}
	s.notifySuccess("Password reset successful")
	return nil
}

// VerifyEmail confirma el correo; en exito marca la sesion como verificada.
func (s *Store) VerifyEmail(ctx context.Context, token string) error {
	if err := s.api.VerifyEmail(ctx, token); err != nil {
		s.notifyError(api.ErrorMessage(err, fallbackVerify))
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		user := *s.user
		user.EmailVerified = true
		s.user = &user
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	s.notifySuccess("Email verified")
	return nil
}

// ResendVerification reenvia el correo de verificacion.
func (s *Store) ResendVerification(ctx context.Context) error {
	if err := s.api.ResendVerification(ctx); err != nil {
		s.notifyError(api.ErrorMessage(err, fallbackResend))
		return err
	}
	s.notifySuccess("Verification email sent")
	return nil
}

// Current devuelve una copia de la sesion vigente, si existe.
func (s *Store) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.Session{}, false
	}
	return domain.Session{User: *s.user, Token: s.token}, true
}

// IsAuthenticated informa el flag de autenticacion.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Token devuelve la credencial vigente; cadena vacia sin sesion. Satisface
// api.TokenSource, asi la credencial se lee al momento de cada request.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) setSession(ctx context.Context, user domain.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	s.token = token
	s.authenticated = true
	s.persistLocked(ctx)
}

func (s *Store) clearSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	if s.storage == nil {
		return
	}
	if err := s.storage.Clear(ctx); err != nil && s.logger != nil {
		s.logger.Warn("session clear failed", zap.Error(err))
	}
}

// persistLocked escribe la proyeccion durable. Se llama con el lock tomado.
// El guardado es fire-and-forget: un fallo se loguea pero no corta la
// operacion en curso.
func (s *Store) persistLocked(ctx context.Context) {
	if s.storage == nil {
		return
	}
	rec := Record{Token: s.token, IsAuthenticated: s.authenticated}
	if s.user != nil {
		user := *s.user
		rec.User = &user
	}
	if err := s.storage.Save(ctx, rec); err != nil && s.logger != nil {
		s.logger.Warn("session persist failed", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) notifySuccess(message string) {
	if s.notifier != nil {
		s.notifier.Success(message)
	}
}

func (s *Store) notifyError(message string) {
	if s.notifier != nil {
		s.notifier.Error(message)
	}
}
