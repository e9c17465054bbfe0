package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/plaidml/plaidkeras/internal/hook"
	"github.com/plaidml/plaidkeras/internal/modsys"
)

type finderPayload struct {
	Position int        `json:"position"`
	Type     string     `json:"type"`
	Hook     *hook.Info `json:"hook,omitempty"`
}

// RegisterFinderRoutes 暴露 /-/finders，按解析顺序列出解析链。
func RegisterFinderRoutes(app *fiber.App, sys *modsys.System) {
	if app == nil || sys == nil {
		return
	}
	app.Get("/-/finders", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"finders": encodeFinders(sys.Finders())})
	})
}

func encodeFinders(finders []modsys.Finder) []finderPayload {
	result := make([]finderPayload, 0, len(finders))
	for i, f := range finders {
		item := finderPayload{Position: i, Type: fmt.Sprintf("%T", f)}
		if hf, ok := f.(*hook.Finder); ok {
			info := hf.Describe()
			item.Hook = &info
		}
		result = append(result, item)
	}
	return result
}
