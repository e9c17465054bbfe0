package hook

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/plaidml/plaidkeras/internal/compat"
	"github.com/plaidml/plaidkeras/internal/config"
	"github.com/plaidml/plaidkeras/internal/logging"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/trace"
)

// Options 描述一次安装请求，零值字段在 Install 时由 config.HookDefaults 补齐。
type Options struct {
	Target  string
	Backend string
	Trace   trace.Destination
	// Patches 为 nil 时使用默认补丁列表；空切片表示不打补丁。
	Patches []string
	Logger  logrus.FieldLogger
}

// Install 将替换钩子追加到 sys 的解析链上，随后应用兼容补丁。
// 后端名称无效时直接返回错误，解析链保持不变。重复调用会追加多个 Finder，
// 先注册的那个生效。
//
// 补丁需要导入宿主框架，因此会立即触发一次对目标模块的解析。
func Install(sys *modsys.System, opts Options) (*Finder, error) {
	if sys == nil {
		return nil, errors.New("module system is nil")
	}
	opts = withDefaults(opts)

	finder, err := NewFinder(opts.Target, opts.Backend, opts.Trace, opts.Logger)
	if err != nil {
		return nil, err
	}
	sys.Register(finder)
	opts.Logger.WithFields(logging.HookFields(opts.Target, finder.Backend().Name, opts.Trace.String())).
		Info("backend finder installed")

	for _, key := range opts.Patches {
		if err := compat.Apply(sys, key); err != nil {
			return finder, fmt.Errorf("install %s backend: %w", finder.Backend().Name, err)
		}
	}
	return finder, nil
}

func withDefaults(opts Options) Options {
	defaults := config.HookDefaults()
	if opts.Target == "" {
		opts.Target = defaults.Target
	}
	if opts.Backend == "" {
		opts.Backend = defaults.Backend
	}
	if !opts.Trace.Enabled() && defaults.TraceEnabled() {
		opts.Trace = trace.Destination{
			Path:       defaults.TraceFile,
			MaxSizeMB:  defaults.TraceMaxSize,
			MaxBackups: defaults.TraceMaxBackups,
		}
	}
	if opts.Patches == nil {
		opts.Patches = defaults.Patches
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return opts
}
