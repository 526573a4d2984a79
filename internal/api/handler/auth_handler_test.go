package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/igloolab/pharmacy-inventory/internal/api/middleware"
	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	refreshFn  func(ctx context.Context, token string) (*domain.TokenPair, error)
	getByIDFn  func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, token string) (*domain.TokenPair, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func violationFields(t *testing.T, err error) []string {
	t.Helper()
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}
	fields := make([]string, 0, len(vErr.Violations))
	for _, v := range vErr.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTP %d error, got %v", code, err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.Role != "admin" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				User:      &domain.User{ID: "u-1", Name: in.Name, Email: in.Email, Role: in.Role, PasswordHash: "hash"},
				TokenPair: domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"name":"  Alice ","email":" Alice@Example.COM","password":"Passw0rd","role":"admin"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["accessToken"] != "access" || resp["refreshToken"] != "refresh" {
		t.Fatalf("unexpected tokens: %v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u-1" {
		t.Fatalf("unexpected user: %v", resp["user"])
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationSkipsService(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"name":"Alice","email":"bad","password":"short"}`)
	fields := violationFields(t, h.Register(c))
	if len(fields) != 2 || fields[0] != "email" || fields[1] != "password" {
		t.Fatalf("unexpected violations: %v", fields)
	}
}

func TestAuthHandler_Register_MalformedJSON(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"name":`)
	assertHTTPError(t, h.Register(c), http.StatusBadRequest)
}

func TestAuthHandler_Register_PropagatesServiceError(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrDuplicateEmail
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"name":"Alice","email":"a@example.com","password":"Passw0rd"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "Passw0rd" {
				return nil, domain.ErrInvalidCredentials
			}
			return &ports.AuthResult{
				User:      &domain.User{ID: "u-1", Email: email},
				TokenPair: domain.TokenPair{AccessToken: "a", RefreshToken: "r"},
			}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"ALICE@example.com","password":"Passw0rd"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || decodeBody(t, rec)["accessToken"] != "a" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"nope"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com"}`)
	if fields := violationFields(t, h.Login(c)); len(fields) != 1 || fields[0] != "password" {
		t.Fatalf("unexpected violations: %v", fields)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		refreshFn: func(_ context.Context, token string) (*domain.TokenPair, error) {
			if token != "good" {
				return nil, domain.ErrInvalidOrExpiredToken
			}
			return &domain.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/auth/refresh", `{"refreshToken":"good"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["accessToken"] != "a2" || resp["refreshToken"] != "r2" {
		t.Fatalf("unexpected response: %v", resp)
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/refresh", `{"refreshToken":"bad"}`)
	if err := h.Refresh(c); !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		getByIDFn: func(_ context.Context, id string) (*domain.User, error) {
			if id != "u-1" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: id, Email: "alice@example.com"}, nil
		},
	})

	c, _ := jsonContext(e, http.MethodGet, "/auth/me", "")
	if err := h.Me(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without auth context, got %v", err)
	}

	c, rec := jsonContext(e, http.MethodGet, "/auth/me", "")
	c.Set(middleware.CtxUserID, "u-1")
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	user := decodeBody(t, rec)["user"].(map[string]any)
	if user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user: %v", user)
	}

	c, _ = jsonContext(e, http.MethodGet, "/auth/me", "")
	c.Set(middleware.CtxUserID, "u-2")
	if err := h.Me(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, rec := jsonContext(e, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || decodeBody(t, rec)["message"] == "" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}
