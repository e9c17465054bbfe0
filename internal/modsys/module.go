package modsys

import (
	"fmt"
	"sort"
	"sync"
)

// Module 是一个命名空间：点分名称、子模块搜索位置以及名字到值的绑定。
type Module struct {
	name string

	mu         sync.RWMutex
	searchPath []string
	attrs      map[string]any
	complete   bool
}

// NewModule 创建一个空的、尚未完成填充的模块。
func NewModule(name string) *Module {
	return &Module{
		name:  name,
		attrs: make(map[string]any),
	}
}

// Name 返回模块的点分路径。
func (m *Module) Name() string {
	return m.name
}

// SearchPath 返回子模块的搜索位置副本；nil 表示该模块不是包。
func (m *Module) SearchPath() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.searchPath == nil {
		return nil
	}
	return append([]string{}, m.searchPath...)
}

// SetSearchPath 设置子模块搜索位置。
func (m *Module) SetSearchPath(locations []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if locations == nil {
		m.searchPath = nil
		return
	}
	m.searchPath = append([]string{}, locations...)
}

// IsPackage 表示该模块是否可以包含子模块。
func (m *Module) IsPackage() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searchPath != nil
}

// SetAttr 绑定（或重新绑定）一个名字。
func (m *Module) SetAttr(name string, value any) {
	m.mu.Lock()
	m.attrs[name] = value
	m.mu.Unlock()
}

// Has 判断名字是否已绑定。
func (m *Module) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.attrs[name]
	return ok
}

// Attr 取出绑定；缺失时返回 *AttributeError，模块未完成填充时会标记 Incomplete。
func (m *Module) Attr(name string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.attrs[name]; ok {
		return v, nil
	}
	return nil, &AttributeError{Module: m.name, Name: name, Incomplete: !m.complete}
}

// Names 返回排序后的全部绑定名。
func (m *Module) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.attrs))
	for name := range m.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items 返回命名空间的浅拷贝快照。
func (m *Module) Items() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

// Len 返回绑定数量。
func (m *Module) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attrs)
}

// MarkComplete 标记填充结束。
func (m *Module) MarkComplete() {
	m.mu.Lock()
	m.complete = true
	m.mu.Unlock()
}

// Complete 表示模块是否已完成填充。
func (m *Module) Complete() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.complete
}

// Get 按期望类型取出绑定，类型不符时返回 *TypeError。
func Get[T any](m *Module, name string) (T, error) {
	var zero T
	raw, err := m.Attr(name)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		return zero, &TypeError{
			Module: m.name,
			Name:   name,
			Want:   fmt.Sprintf("%T", zero),
			Got:    fmt.Sprintf("%T", raw),
		}
	}
	return v, nil
}
