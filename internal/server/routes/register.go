package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/plaidml/plaidkeras/internal/modsys"
)

// RegisterAll 挂载全部诊断接口。
func RegisterAll(app *fiber.App, sys *modsys.System) {
	RegisterBackendRoutes(app)
	RegisterModuleRoutes(app, sys)
	RegisterFinderRoutes(app, sys)
	RegisterPatchRoutes(app)
}
