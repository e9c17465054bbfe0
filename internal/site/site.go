// Package site 组装一个带有宿主框架与全部后端实现的 modsys.System。
package site

import (
	"github.com/sirupsen/logrus"

	"github.com/plaidml/plaidkeras/internal/keras"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/plaidml"
)

// Root 是顶层模块的搜索位置。
const Root = "/site-packages"

// NewSystem 创建 System 并挂载 keras 与 plaidml 包树。logger 为空时沿用 logrus 标准实例。
func NewSystem(logger logrus.FieldLogger) *modsys.System {
	sys := modsys.NewSystem(Root)
	if logger != nil {
		sys.SetLogger(logger)
	}
	keras.Mount(sys, Root)
	plaidml.Mount(sys, Root)
	return sys
}
