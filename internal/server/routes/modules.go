package routes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/plaidml/plaidkeras/internal/modsys"
)

// RegisterModuleRoutes 暴露 /-/modules 诊断接口，查询模块缓存中的模块。
// 详情接口默认只读缓存；带 ?import=1 时会通过 sys 触发一次导入。
func RegisterModuleRoutes(app *fiber.App, sys *modsys.System) {
	if app == nil || sys == nil {
		return
	}

	app.Get("/-/modules", func(c fiber.Ctx) error {
		mods := sys.Modules()
		payload := make([]modulePayload, 0, len(mods))
		for _, mod := range mods {
			payload = append(payload, encodeModule(mod, false))
		}
		return c.JSON(fiber.Map{
			"modules": payload,
			"mounted": sys.Mounted(),
			"roots":   sys.Roots(),
		})
	})

	app.Get("/-/modules/:path", func(c fiber.Ctx) error {
		name := strings.TrimSpace(c.Params("path"))
		if !modsys.ValidPath(name) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_module_path"})
		}

		mod, ok := sys.Lookup(name)
		if !ok && wantsImport(c.Query("import")) {
			imported, err := sys.Import(name)
			if err != nil {
				status := fiber.StatusInternalServerError
				if errors.Is(err, modsys.ErrModuleNotFound) {
					status = fiber.StatusNotFound
				}
				return c.Status(status).JSON(fiber.Map{"error": "import_failed", "detail": err.Error()})
			}
			mod, ok = imported, true
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "module_not_loaded"})
		}
		return c.JSON(encodeModule(mod, true))
	})
}

type modulePayload struct {
	Name       string            `json:"name"`
	Package    bool              `json:"package"`
	Complete   bool              `json:"complete"`
	SearchPath []string          `json:"search_path,omitempty"`
	AttrCount  int               `json:"attr_count"`
	Attrs      map[string]string `json:"attrs,omitempty"`
}

func encodeModule(mod *modsys.Module, detail bool) modulePayload {
	payload := modulePayload{
		Name:       mod.Name(),
		Package:    mod.IsPackage(),
		Complete:   mod.Complete(),
		SearchPath: mod.SearchPath(),
		AttrCount:  mod.Len(),
	}
	if !detail {
		return payload
	}
	items := mod.Items()
	payload.Attrs = make(map[string]string, len(items))
	for name, value := range items {
		payload.Attrs[name] = describeValue(value)
	}
	return payload
}

// describeValue 输出绑定值的类型，子模块输出为 module:<name>。
func describeValue(value any) string {
	switch v := value.(type) {
	case *modsys.Module:
		return "module:" + v.Name()
	case string:
		return "string:" + v
	default:
		return fmt.Sprintf("%T", value)
	}
}

func wantsImport(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
