package backend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend 是 UnknownError 的哨兵值。
var ErrUnknownBackend = errors.New("unknown backend")

// UnknownError 表示安装时指定了未注册的后端名称。
type UnknownError struct {
	Name  string
	Known []string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("Unknown backend '%s'; possible values are '%s'", e.Name, strings.Join(e.Known, "', '"))
}

// Is 使 errors.Is(err, ErrUnknownBackend) 成立。
func (e *UnknownError) Is(target error) bool {
	return target == ErrUnknownBackend
}

// ContractError 汇总 Bind 时发现的缺失与类型不符的名字。
type ContractError struct {
	Module   string
	Missing  []string
	Mistyped []string
}

func (e *ContractError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Mistyped) > 0 {
		parts = append(parts, "mistyped "+strings.Join(e.Mistyped, ", "))
	}
	return fmt.Sprintf("module '%s' does not satisfy the backend contract: %s", e.Module, strings.Join(parts, "; "))
}
