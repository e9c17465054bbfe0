package hook

import (
	"fmt"

	"github.com/plaidml/plaidkeras/internal/modsys"
)

// Inject 通过 sys 导入 sourcePath，并把它命名空间中的全部绑定浅拷贝到 target。
// 已存在的同名绑定会被覆盖，重复注入结果不变。
func Inject(sys *modsys.System, target *modsys.Module, sourcePath string) error {
	src, err := sys.Import(sourcePath)
	if err != nil {
		return fmt.Errorf("inject %s into %s: %w", sourcePath, target.Name(), err)
	}
	for name, value := range src.Items() {
		target.SetAttr(name, value)
	}
	return nil
}
