package modsys

import (
	"errors"
	"fmt"
)

// ErrModuleNotFound 是 NotFoundError 的哨兵值，便于 errors.Is 判断。
var ErrModuleNotFound = errors.New("module not found")

// ErrAttributeNotFound 是 AttributeError 的哨兵值。
var ErrAttributeNotFound = errors.New("attribute not found")

// NotFoundError 表示某个点分路径无法被任何 Finder 或已挂载源解析。
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no module named '%s'", e.Path)
}

// Is 使 errors.Is(err, ErrModuleNotFound) 成立。
func (e *NotFoundError) Is(target error) bool {
	return target == ErrModuleNotFound
}

// AttributeError 表示模块命名空间中缺少某个名字。
// Incomplete 为 true 时说明模块仍在填充中（通常是循环导入），而不是真的缺失。
type AttributeError struct {
	Module     string
	Name       string
	Incomplete bool
}

func (e *AttributeError) Error() string {
	if e.Incomplete {
		return fmt.Sprintf("module '%s' has no attribute '%s' yet: module is still being populated (circular import?)", e.Module, e.Name)
	}
	return fmt.Sprintf("module '%s' has no attribute '%s'", e.Module, e.Name)
}

// Is 使 errors.Is(err, ErrAttributeNotFound) 成立。
func (e *AttributeError) Is(target error) bool {
	return target == ErrAttributeNotFound
}

// TypeError 表示绑定存在但类型与调用方期望不符。
type TypeError struct {
	Module string
	Name   string
	Want   string
	Got    string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("module '%s' attribute '%s' is %s, want %s", e.Module, e.Name, e.Got, e.Want)
}
