package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/plaidml/plaidkeras/internal/logging"
)

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger     *logrus.Logger
	ListenPort int
}

const contextKeyRequestID = "_plaidkeras_request_id"

// NewApp builds a Fiber application with request-id middleware and panic
// recovery. Routes are attached by the routes package.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts.Logger))

	return app, nil
}

// RegisterFallback answers every unmatched request with a JSON 404. Call it
// after all routes are registered.
func RegisterFallback(app *fiber.App) {
	app.Use(func(c fiber.Ctx) error {
		code := "route_not_found"
		if !IsDiagnosticsPath(c.Path()) {
			code = "not_diagnostics_path"
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": code})
	})
}

// requestContextMiddleware 生成请求 ID 并在响应后记录访问日志。
func requestContextMiddleware(logger *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		entry := logger.WithFields(logging.RequestFields(reqID, c.Method(), c.Path(), status))
		if err != nil {
			entry.WithError(err).Warn("diagnostics request failed")
		} else {
			entry.Debug("diagnostics request")
		}
		return err
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

// IsDiagnosticsPath reports whether path lives under the /-/ namespace.
func IsDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
