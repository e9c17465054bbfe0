package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/plaidml/plaidkeras/internal/compat"
)

type patchPayload struct {
	Key    string `json:"key"`
	Module string `json:"module"`
	Attr   string `json:"attr"`
	Status string `json:"status"`
}

// RegisterPatchRoutes 暴露 /-/patches，列出已注册的兼容补丁。
func RegisterPatchRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/-/patches", func(c fiber.Ctx) error {
		keys := compat.Keys()
		return c.JSON(fiber.Map{
			"patches":  encodePatches(keys),
			"registry": compat.Snapshot(keys),
		})
	})
}

func encodePatches(keys []string) []patchPayload {
	result := make([]patchPayload, 0, len(keys))
	for _, key := range keys {
		patch, ok := compat.Fetch(key)
		if !ok {
			continue
		}
		result = append(result, patchPayload{
			Key:    key,
			Module: patch.Module,
			Attr:   patch.Attr,
			Status: compat.Status(key),
		})
	}
	return result
}
