// Package version 保存构建时注入的版本信息。
package version

import (
	"fmt"
	"runtime"
)

// Version/Commit 可在构建时通过 -ldflags 注入，默认使用开发占位符。
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Full 返回便于 CLI 打印的完整版本信息。
func Full() string {
	return fmt.Sprintf("plaidkeras %s (%s, %s)", Version, Commit, runtime.Version())
}

// Fields 以键值形式返回版本信息，供诊断接口与启动日志使用。
func Fields() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"go":      runtime.Version(),
	}
}
