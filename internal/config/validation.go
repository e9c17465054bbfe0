package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/compat"
	"github.com/plaidml/plaidkeras/internal/modsys"
)

// Validate 针对语义级别做进一步校验，防止非法配置安装钩子。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(strings.TrimSpace(g.LogLevel)); err != nil {
		return newFieldError("Global.LogLevel", fmt.Sprintf("无法识别: %s", g.LogLevel))
	}
	if g.LogMaxSize < 0 || g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxSize/LogMaxBackups", "不能为负数")
	}

	return c.Hook.Validate()
}

// Validate 校验钩子参数；未知后端的原因沿用 backend.UnknownError 的文案。
func (h HookConfig) Validate() error {
	if !modsys.ValidPath(h.Target) {
		return newFieldError(hookField("Target"), fmt.Sprintf("不是合法的模块路径: %q", h.Target))
	}
	if _, err := backend.Lookup(h.Backend); err != nil {
		return newFieldError(hookField("Backend"), err.Error())
	}
	if h.TraceMaxSize < 0 || h.TraceMaxBackups < 0 {
		return newFieldError(hookField("TraceMaxSize/TraceMaxBackups"), "不能为负数")
	}
	for _, key := range h.Patches {
		if compat.Status(key) != "registered" {
			return newFieldError(hookField("Patches"), fmt.Sprintf("未注册补丁: %s", key))
		}
	}
	return nil
}
