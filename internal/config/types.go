package config

import "strings"

// GlobalConfig 描述进程级行为：日志输出与诊断服务端口。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// HookConfig 决定安装替换钩子时的目标模块、后端与 trace 输出。
type HookConfig struct {
	Target          string   `mapstructure:"Target"`
	Backend         string   `mapstructure:"Backend"`
	TraceFile       string   `mapstructure:"TraceFile"`
	TraceMaxSize    int      `mapstructure:"TraceMaxSize"`
	TraceMaxBackups int      `mapstructure:"TraceMaxBackups"`
	Patches         []string `mapstructure:"Patches"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Hook   HookConfig   `mapstructure:"Hook"`
}

// TraceEnabled 表示是否配置了 trace 输出文件。
func (h HookConfig) TraceEnabled() bool {
	return strings.TrimSpace(h.TraceFile) != ""
}

// BackendKey 返回归一化后的后端名，供日志与注册表查询使用。
func (h HookConfig) BackendKey() string {
	return strings.ToLower(strings.TrimSpace(h.Backend))
}
