// Package hook 安装模块替换钩子：当宿主框架导入目标模块时，返回由所选后端实现
// 拼装出来的合成模块。
package hook

import (
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/logging"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/tensor"
	"github.com/plaidml/plaidkeras/internal/trace"
)

// State 描述 Finder 的生命周期。
type State int

const (
	// Unclaimed 表示目标模块尚未被加载。
	Unclaimed State = iota
	// Resolved 表示合成模块已构建并进入模块缓存。
	Resolved
)

func (s State) String() string {
	switch s {
	case Unclaimed:
		return "unclaimed"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Finder 拦截对 target 的导入，并以 desc 指定的后端实现填充合成模块。
type Finder struct {
	target string
	desc   backend.Descriptor
	trace  trace.Destination
	logger logrus.FieldLogger

	mu         sync.Mutex
	searchPath []string
	state      State
	observer   *trace.LogObserver
}

// Info 是 Finder 的只读快照，供诊断接口输出。
type Info struct {
	Target     string   `json:"target"`
	Backend    string   `json:"backend"`
	ImplPath   string   `json:"impl_path"`
	State      string   `json:"state"`
	SearchPath []string `json:"search_path"`
	Trace      string   `json:"trace"`
}

// NewFinder 校验后端名称并构造 Finder；未知后端立即失败。
func NewFinder(target, backendName string, dest trace.Destination, logger logrus.FieldLogger) (*Finder, error) {
	if !modsys.ValidPath(target) {
		return nil, fmt.Errorf("invalid target module path %q", target)
	}
	desc, err := backend.Lookup(backendName)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Finder{
		target: target,
		desc:   desc,
		trace:  dest,
		logger: logger,
	}, nil
}

// Target 返回被替换的模块路径。
func (f *Finder) Target() string { return f.target }

// Backend 返回所选后端的描述。
func (f *Finder) Backend() backend.Descriptor { return f.desc }

// State 返回当前生命周期状态。
func (f *Finder) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Describe 返回诊断快照。
func (f *Finder) Describe() Info {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Info{
		Target:     f.target,
		Backend:    f.desc.Name,
		ImplPath:   f.desc.ImplPath,
		State:      f.state.String(),
		SearchPath: append([]string{}, f.searchPath...),
		Trace:      f.trace.String(),
	}
}

// Match 只认领与 target 完全相同的路径，并记录合成模块的子模块搜索位置：
// 父包每个搜索位置下以路径末段命名的子目录。
func (f *Finder) Match(name string, parentSearch []string) bool {
	if name != f.target {
		return false
	}
	_, tail := splitTail(name)
	locations := make([]string, 0, len(parentSearch))
	for _, loc := range parentSearch {
		locations = append(locations, path.Join(loc, tail))
	}
	f.mu.Lock()
	f.searchPath = locations
	f.mu.Unlock()
	return true
}

// FindModule 实现 modsys.Finder。
func (f *Finder) FindModule(name string, parentSearch []string) (modsys.Loader, bool) {
	if !f.Match(name, parentSearch) {
		return nil, false
	}
	return f, true
}

// LoadModule 构建合成模块。模块在填充之前就发布到缓存，填充期间的重入导入
// 会拿到同一个（尚不完整的）模块。
func (f *Finder) LoadModule(sys *modsys.System, name string) (*modsys.Module, error) {
	mod := modsys.NewModule(name)
	f.mu.Lock()
	mod.SetSearchPath(f.searchPath)
	f.mu.Unlock()
	sys.Publish(mod)

	if err := Inject(sys, mod, f.desc.ImplPath); err != nil {
		return nil, err
	}
	if !f.desc.Default {
		if err := Inject(sys, mod, backend.CommonPath); err != nil {
			return nil, err
		}
		backendName := f.desc.Name
		mod.SetAttr(backend.AttrBackend, backend.NameFunc(func() string { return backendName }))
	}
	if f.trace.Enabled() {
		if err := f.instrument(mod); err != nil {
			return nil, err
		}
	}
	mod.MarkComplete()

	f.mu.Lock()
	f.state = Resolved
	f.mu.Unlock()

	f.logger.WithFields(logging.HookFields(f.target, f.desc.Name, f.trace.String())).
		WithField("attrs", mod.Len()).
		Info("backend module loaded")
	return mod, nil
}

// Close 释放 trace 输出。
func (f *Finder) Close() error {
	f.mu.Lock()
	obs := f.observer
	f.observer = nil
	f.mu.Unlock()
	if obs == nil {
		return nil
	}
	return obs.Close()
}

// instrument 用 trace 包装 function；只有默认后端会在注释里附带 dump_val 的描述。
func (f *Finder) instrument(mod *modsys.Module) error {
	factory, err := modsys.Get[tensor.FunctionFactory](mod, backend.AttrFunction)
	if err != nil {
		return fmt.Errorf("instrument %s: %w", mod.Name(), err)
	}
	obs, err := f.openObserver()
	if err != nil {
		return fmt.Errorf("instrument %s: %w", mod.Name(), err)
	}

	var describe func(tensor.Op) string
	if f.desc.Default {
		dump, err := modsys.Get[backend.DumpFunc](mod, backend.AttrDumpVal)
		switch {
		case err == nil:
			describe = dump
		case !errors.Is(err, modsys.ErrAttributeNotFound):
			return fmt.Errorf("instrument %s: %w", mod.Name(), err)
		}
	}
	mod.SetAttr(backend.AttrFunction, trace.Instrument(factory, obs, describe))
	return nil
}

func (f *Finder) openObserver() (*trace.LogObserver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.observer != nil {
		return f.observer, nil
	}
	obs, err := trace.NewLogObserver(f.trace, f.desc.Name)
	if err != nil {
		return nil, err
	}
	f.observer = obs
	return obs, nil
}

func splitTail(name string) (parent, tail string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}
