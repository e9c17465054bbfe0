package backend

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var globalRegistry = newRegistry()

func init() {
	for _, k := range Kinds() {
		MustRegister(k.Descriptor())
	}
}

type registry struct {
	mu       sync.RWMutex
	backends map[string]Descriptor
}

func newRegistry() *registry {
	return &registry{backends: make(map[string]Descriptor)}
}

// Register 将后端描述加入全局注册表，重复名称会返回错误。
func Register(desc Descriptor) error {
	return globalRegistry.register(desc)
}

// MustRegister 在注册失败时 panic，适合 init() 中调用。
func MustRegister(desc Descriptor) {
	if err := Register(desc); err != nil {
		panic(err)
	}
}

// Resolve 返回指定名称的后端描述。
func Resolve(name string) (Descriptor, bool) {
	return globalRegistry.resolve(name)
}

// Lookup 与 Resolve 相同，但未知名称返回列出全部合法值的 *UnknownError。
func Lookup(name string) (Descriptor, error) {
	if desc, ok := Resolve(name); ok {
		return desc, nil
	}
	return Descriptor{}, &UnknownError{Name: name, Known: Keys()}
}

// List 返回按名称排序的后端描述列表。
func List() []Descriptor {
	return globalRegistry.list()
}

// Keys 返回所有已注册后端的名称，供错误信息与诊断使用。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, desc := range items {
		result[i] = desc.Name
	}
	return result
}

func (r *registry) normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (r *registry) register(desc Descriptor) error {
	key := r.normalizeKey(desc.Name)
	if key == "" {
		return fmt.Errorf("backend name is required")
	}
	if strings.TrimSpace(desc.ImplPath) == "" {
		return fmt.Errorf("backend %s: implementation path is required", key)
	}
	desc.Name = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[key]; exists {
		return fmt.Errorf("backend %s already registered", key)
	}
	r.backends[key] = desc
	return nil
}

func (r *registry) resolve(key string) (Descriptor, bool) {
	normalized := r.normalizeKey(key)
	if normalized == "" {
		return Descriptor{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.backends[normalized]
	return desc, ok
}

func (r *registry) list() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.backends) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.backends))
	for key := range r.backends {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Descriptor, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.backends[key])
	}
	return result
}
