package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"trustlens/internal/domain"
)

// TokenSource devuelve la credencial bearer vigente al momento de la llamada.
// Una cadena vacia significa que no hay sesion.
type TokenSource func() string

// Error representa un fallo de la API con el mensaje provisto por el servidor.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status=%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status=%d", e.Status)
}

// ErrorMessage extrae el mensaje del servidor si err es un *Error con mensaje,
// o devuelve fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client habla con el servicio de autenticacion de TrustLens.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewClient construye un cliente apuntando al servicio de autenticacion.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:4000"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SetTokenSource fija la fuente de credenciales; se consulta en cada request.
func (c *Client) SetTokenSource(src TokenSource) {
	c.tokens = src
}

// AuthResponse es la respuesta de login y register.
type AuthResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// RegisterInput contiene los datos de alta de cuenta.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company,omitempty"`
}

// Login autentica con email y password.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Register crea una cuenta nueva.
func (c *Client) Register(ctx context.Context, input RegisterInput) (AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "/auth/register", input, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Me devuelve la identidad actual segun la credencial adjunta.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return domain.User{}, err
	}
	return out, nil
}

// ForgotPassword solicita un correo de restablecimiento.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword cambia la password usando un token de restablecimiento.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.post(ctx, "/auth/reset-password", body, nil)
}

// VerifyEmail confirma la direccion de correo con un token.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.post(ctx, "/auth/verify-email", map[string]string{"token": token}, nil)
}

// ResendVerification reenvia el correo de verificacion de la sesion actual.
func (c *Client) ResendVerification(ctx context.Context) error {
	return c.post(ctx, "/auth/resend-verification", struct{}{}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// La credencial se lee al momento de armar el request, nunca de un
	// header default compartido.
	if c.tokens != nil {
		if token := c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("api error",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
			)
		}
		return &Error{Status: resp.StatusCode, Message: serverMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// serverMessage busca el mensaje de error en los formatos usuales del backend.
func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
