package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler(nil).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealth_Readiness(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name     string
		deps     map[string]Pinger
		wantCode int
		wantBody string
	}{
		{"all up", map[string]Pinger{"store": ok, "redis": ok}, http.StatusOK, "ok"},
		{"store down", map[string]Pinger{"store": down, "redis": ok}, http.StatusServiceUnavailable, "degraded"},
		{"no deps", nil, http.StatusOK, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			if err := NewHealthHandler(tt.deps).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.wantBody || len(resp.Dependencies) != len(tt.deps) {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestPingAndHello(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := Ping(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/ping", nil), rec)); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if rec.Body.String() != "pong" {
		t.Fatalf("expected pong, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if err := Hello(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("hello: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("unexpected hello response %d %q", rec.Code, rec.Body.String())
	}
}
