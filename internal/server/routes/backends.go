package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/version"
)

type backendPayload struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	ImplPath    string `json:"impl_path"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// RegisterBackendRoutes 暴露 /-/backends，列出可安装的后端。
func RegisterBackendRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/-/backends", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"backends": encodeBackends(backend.List()),
			"default":  backend.DefaultName(),
			"build":    version.Fields(),
		})
	})
}

func encodeBackends(descs []backend.Descriptor) []backendPayload {
	result := make([]backendPayload, 0, len(descs))
	for _, desc := range descs {
		result = append(result, backendPayload{
			Name:        desc.Name,
			Kind:        desc.Kind.String(),
			ImplPath:    desc.ImplPath,
			Description: desc.Description,
			Default:     desc.Default,
		})
	}
	return result
}
