package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"trustlens/internal/domain"
)

func TestClient_LoginDecodesUserAndToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "ana@example.com" {
			t.Errorf("unexpected email %q", body["email"])
		}
		_ = json.NewEncoder(w).Encode(AuthResponse{
			User:  domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser},
			Token: "tok-1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	resp, err := client.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != "u1" || resp.Token != "tok-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClient_MeAttachesCurrentCredential(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(domain.User{ID: "u1"})
	}))
	defer server.Close()

	token := ""
	client := NewClient(server.URL, zap.NewNop())
	client.SetTokenSource(func() string { return token })

	// Sin credencial: el header no se manda.
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("me: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}

	// La fuente se consulta en cada request, no al construir el cliente.
	token = "tok-2"
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("me: %v", err)
	}
	if gotAuth != "Bearer tok-2" {
		t.Fatalf("expected current credential, got %q", gotAuth)
	}
}

func TestClient_ServerMessageSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	err := client.VerifyEmail(context.Background(), "stale")
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "token expired" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if got := ErrorMessage(err, "Email verification failed"); got != "token expired" {
		t.Fatalf("expected server message, got %q", got)
	}
}

func TestClient_FallbackWhenNoServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	err := client.ForgotPassword(context.Background(), "ana@example.com")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := ErrorMessage(err, "Could not send reset email"); got != "Could not send reset email" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestClient_RegisterSendsAllFields(t *testing.T) {
	var got RegisterInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(AuthResponse{User: domain.User{ID: "u2"}, Token: "tok-r"})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	input := RegisterInput{
		Email:     "ana@example.com",
		Password:  "secret",
		FirstName: "Ana",
		LastName:  "Reyes",
		Company:   "Acme",
	}
	if _, err := client.Register(context.Background(), input); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got != input {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestErrorMessage_NonAPIError(t *testing.T) {
	if got := ErrorMessage(errors.New("dial tcp: refused"), "Login failed"); got != "Login failed" {
		t.Fatalf("expected fallback for plain errors, got %q", got)
	}
}
