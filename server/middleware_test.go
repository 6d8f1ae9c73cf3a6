package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAuthMiddlewareRejectsBadHeaders(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "authorization required"},
		{"wrong scheme", "Token abc123", "invalid authorization format"},
		{"bare token", "abc123", "invalid authorization format"},
	}

	s := &Server{}
	e := echo.New()
	next := s.authMiddleware(func(c echo.Context) error {
		t.Error("handler ran without a valid token")
		return nil
	})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			if err := next(e.NewContext(req, rec)); err != nil {
				t.Fatalf("middleware error: %v", err)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad body: %v", err)
			}
			if body["error"] != tc.want {
				t.Errorf("error = %q, want %q", body["error"], tc.want)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	s := &Server{}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	if err := s.handleHealth(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleCheckout(t *testing.T) {
	e := echo.New()

	t.Run("unconfigured", func(t *testing.T) {
		s := &Server{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		rec := httptest.NewRecorder()

		if err := s.handleCheckout(e.NewContext(req, rec)); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("configured", func(t *testing.T) {
		s := &Server{checkoutURL: "https://pay.example.com/session"}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		rec := httptest.NewRecorder()

		if err := s.handleCheckout(e.NewContext(req, rec)); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body["url"] != s.checkoutURL {
			t.Errorf("url = %q, want %q", body["url"], s.checkoutURL)
		}
	})
}
