package server

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

func TestNewAppValidatesOptions(t *testing.T) {
	logger := logrus.New()
	cases := []AppOptions{
		{ListenPort: 5000},
		{Logger: logger},
		{Logger: logger, ListenPort: -1},
	}
	for i, opts := range cases {
		if _, err := NewApp(opts); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(t)
	var seen string
	app.Get("/-/ping", func(c fiber.Ctx) error {
		seen = RequestID(c)
		return c.SendString("pong")
	})
	RegisterFallback(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/ping", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	reqID := resp.Header.Get("X-Request-ID")
	if reqID == "" || reqID != seen {
		t.Fatalf("expected X-Request-ID %q to match handler value %q", reqID, seen)
	}
}

func TestFallbackReturnsJSON404(t *testing.T) {
	app := newTestApp(t)
	RegisterFallback(app)

	cases := map[string]string{
		"/-/unknown": `"route_not_found"`,
		"/v2/":       `"not_diagnostics_path"`,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("app.Test failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !bytes.Contains(body, []byte(want)) {
			t.Fatalf("%s: expected %s, got %s", path, want, body)
		}
	}
}

func TestRecoverFromPanic(t *testing.T) {
	app := newTestApp(t)
	app.Get("/-/panic", func(c fiber.Ctx) error {
		panic("boom")
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/-/panic", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app, err := NewApp(AppOptions{
		Logger:     logger,
		ListenPort: 5000,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app
}
