package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/compat"
)

// 环境变量名。后端与 trace 文件沿用 PlaidML 约定，便于与既有脚本共存。
const (
	EnvBackend   = "PLAIDML_KERAS_BACKEND"
	EnvTraceFile = "PLAIDML_TRACE_FILENAME"
)

// DefaultTarget 是默认被替换的模块路径。
const DefaultTarget = "keras.backend"

// Load 读取并解析 TOML 配置文件，同时注入默认值、环境变量与校验逻辑。
// path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HookDefaults 在调用时读取环境变量，返回安装钩子使用的默认参数，不做校验。
func HookDefaults() HookConfig {
	cfg, err := decode(newViper())
	if err != nil {
		// 只有默认值与字符串环境变量参与解码，失败时退回内置默认值。
		return HookConfig{Target: DefaultTarget, Backend: backend.DefaultName(), Patches: []string{compat.ConvertKernelKey}}
	}
	return cfg.Hook
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	_ = v.BindEnv("Hook.Backend", EnvBackend)
	_ = v.BindEnv("Hook.TraceFile", EnvTraceFile)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("Hook.Target", DefaultTarget)
	v.SetDefault("Hook.Backend", backend.DefaultName())
	v.SetDefault("Hook.TraceFile", "")
	v.SetDefault("Hook.TraceMaxSize", 100)
	v.SetDefault("Hook.TraceMaxBackups", 3)
	v.SetDefault("Hook.Patches", []string{compat.ConvertKernelKey})
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		trimStringHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	applyHookDefaults(&cfg.Hook)
	return &cfg, nil
}

func applyHookDefaults(h *HookConfig) {
	if h.Target == "" {
		h.Target = DefaultTarget
	}
	if h.Backend == "" {
		h.Backend = backend.DefaultName()
	}
	h.Backend = h.BackendKey()
	patches := h.Patches[:0]
	for _, p := range h.Patches {
		if p = strings.TrimSpace(p); p != "" {
			patches = append(patches, p)
		}
	}
	h.Patches = patches
}

// trimStringHook 去除字符串字段两侧空白，环境变量里常带换行。
func trimStringHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		return strings.TrimSpace(data.(string)), nil
	}
}
