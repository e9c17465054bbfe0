package modsys

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Finder 是解析链上的一个环节。FindModule 声明是否接管某个点分路径；
// parentSearch 是父包的搜索位置，顶层模块为 nil。
type Finder interface {
	FindModule(path string, parentSearch []string) (Loader, bool)
}

// Loader 负责为被接管的路径构造模块。实现需要自行调用 System.Publish，
// 以便在填充之前让循环导入看到同一个对象。
type Loader interface {
	LoadModule(sys *System, path string) (*Module, error)
}

// LoaderFunc 将函数适配为 Loader。
type LoaderFunc func(sys *System, path string) (*Module, error)

// LoadModule 调用 f 本身。
func (f LoaderFunc) LoadModule(sys *System, path string) (*Module, error) {
	return f(sys, path)
}

// Hook 把 (匹配函数, 工厂) 组合成一个 Finder，供简单场景直接注册。
func Hook(match func(path string) bool, factory LoaderFunc) Finder {
	return hookFinder{match: match, factory: factory}
}

type hookFinder struct {
	match   func(string) bool
	factory LoaderFunc
}

func (h hookFinder) FindModule(path string, _ []string) (Loader, bool) {
	if h.match == nil || !h.match(path) {
		return nil, false
	}
	return h.factory, true
}

// Source 描述挂载在某个位置上的“磁盘”模块。
type Source struct {
	// Package 为 true 时模块的搜索位置就是它自身的挂载位置，可以继续包含子模块。
	Package bool
	// Populate 在模块发布到缓存后执行，负责写入命名空间。
	Populate func(sys *System, mod *Module) error
}

// System 是进程级的模块系统上下文：解析链、模块缓存与已挂载源。
// 启动时构造一次，并显式传给所有需要触发导入的组件。
type System struct {
	mu      sync.RWMutex
	roots   []string
	finders []Finder
	modules map[string]*Module
	sources map[string]Source
	logger  logrus.FieldLogger
}

// NewSystem 以顶层搜索位置（类似 site-packages）构造 System。
func NewSystem(roots ...string) *System {
	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		cleaned = append(cleaned, path.Clean("/"+root))
	}
	return &System{
		roots:   cleaned,
		modules: make(map[string]*Module),
		sources: make(map[string]Source),
		logger:  logrus.StandardLogger(),
	}
}

// SetLogger 替换导入过程使用的日志实例。
func (s *System) SetLogger(logger logrus.FieldLogger) {
	if logger == nil {
		return
	}
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Roots 返回顶层搜索位置。
func (s *System) Roots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.roots...)
}

// Mount 在 location 上发布一个源模块，重复挂载会覆盖旧值。
func (s *System) Mount(location string, src Source) {
	location = path.Clean("/" + location)
	s.mu.Lock()
	s.sources[location] = src
	s.mu.Unlock()
}

// Mounted 返回排序后的全部挂载位置。
func (s *System) Mounted() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sources))
	for loc := range s.sources {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// Register 将 Finder 追加到解析链末尾；同一个 Finder 注册两次会出现两次。
func (s *System) Register(f Finder) {
	if f == nil {
		return
	}
	s.mu.Lock()
	s.finders = append(s.finders, f)
	s.mu.Unlock()
}

// Finders 返回解析链副本。
func (s *System) Finders() []Finder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Finder(nil), s.finders...)
}

// Publish 将模块写入缓存，覆盖同名条目。
func (s *System) Publish(mod *Module) {
	if mod == nil {
		return
	}
	s.mu.Lock()
	s.modules[mod.Name()] = mod
	s.mu.Unlock()
}

// Lookup 只查缓存，不触发导入。
func (s *System) Lookup(name string) (*Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mod, ok := s.modules[name]
	return mod, ok
}

// Modules 返回按名称排序的缓存模块。
func (s *System) Modules() []*Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Module, 0, len(names))
	for _, name := range names {
		out = append(out, s.modules[name])
	}
	return out
}

// Import 解析点分路径并返回模块。缓存命中时直接返回（即便模块仍在填充中），
// 否则先导入父包，再依次询问解析链，最后回落到已挂载源。
func (s *System) Import(name string) (*Module, error) {
	if !ValidPath(name) {
		return nil, &NotFoundError{Path: name}
	}
	if mod, ok := s.Lookup(name); ok {
		return mod, nil
	}

	parentName, tail := splitPath(name)
	var (
		parent *Module
		search []string
	)
	if parentName != "" {
		var err error
		parent, err = s.Import(parentName)
		if err != nil {
			return nil, err
		}
		// 父包初始化时可能已经导入了目标模块。
		if mod, ok := s.Lookup(name); ok {
			return mod, nil
		}
		search = parent.SearchPath()
		if search == nil {
			return nil, fmt.Errorf("'%s' is not a package: %w", parentName, &NotFoundError{Path: name})
		}
	}

	mod, err := s.find(name, tail, search)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		parent.SetAttr(tail, mod)
	}
	return mod, nil
}

func (s *System) find(name, tail string, parentSearch []string) (*Module, error) {
	logger := s.log()
	for _, finder := range s.Finders() {
		loader, ok := finder.FindModule(name, parentSearch)
		if !ok {
			continue
		}
		logger.WithFields(logrus.Fields{
			"action": "import",
			"module": name,
			"finder": fmt.Sprintf("%T", finder),
		}).Debug("module claimed by finder")

		mod, err := loader.LoadModule(s, name)
		if err != nil {
			s.forget(name)
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if cached, ok := s.Lookup(name); ok {
			return cached, nil
		}
		if mod == nil {
			return nil, fmt.Errorf("load %s: loader returned no module", name)
		}
		s.Publish(mod)
		return mod, nil
	}

	search := parentSearch
	if search == nil {
		search = s.Roots()
	}
	return s.loadSource(name, tail, search)
}

func (s *System) loadSource(name, tail string, search []string) (*Module, error) {
	for _, loc := range search {
		location := path.Join(loc, tail)
		s.mu.RLock()
		src, ok := s.sources[location]
		s.mu.RUnlock()
		if !ok {
			continue
		}

		mod := NewModule(name)
		if src.Package {
			mod.SetSearchPath([]string{location})
		}
		s.Publish(mod)
		if src.Populate != nil {
			if err := src.Populate(s, mod); err != nil {
				s.forget(name)
				return nil, fmt.Errorf("exec %s: %w", name, err)
			}
		}
		mod.MarkComplete()

		s.log().WithFields(logrus.Fields{
			"action":   "import",
			"module":   name,
			"location": location,
		}).Debug("module loaded from source")
		return mod, nil
	}
	return nil, &NotFoundError{Path: name}
}

func (s *System) forget(name string) {
	s.mu.Lock()
	delete(s.modules, name)
	s.mu.Unlock()
}

func (s *System) log() logrus.FieldLogger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

func splitPath(name string) (parent, tail string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// ValidPath 校验点分路径格式：非空且每一段都非空。
func ValidPath(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
	}
	return true
}
