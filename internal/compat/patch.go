// Package compat 保存安装后端时需要对宿主框架打的兼容补丁。
package compat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/plaidml/plaidkeras/internal/keras"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/tensor"
)

// ConvertKernelKey 标识 conv_utils.convert_kernel 的补丁。宿主框架默认会为非
// tensorflow 后端翻转卷积核，替换后端时需要把它改为恒等函数。
const ConvertKernelKey = "convert_kernel"

// Patch 描述一次属性替换：导入 Module 后，把 Attr 重新绑定为 Replace 的返回值。
type Patch struct {
	Module  string
	Attr    string
	Replace func(current any) any
}

var registry sync.Map

// ErrDuplicatePatch indicates a key already has a patch registered.
var ErrDuplicatePatch = errors.New("patch already registered")

// ErrPatchMissing is returned by Apply for unknown keys.
var ErrPatchMissing = errors.New("patch not registered")

func init() {
	MustRegister(ConvertKernelKey, Patch{
		Module: "keras.utils.conv_utils",
		Attr:   "convert_kernel",
		Replace: func(any) any {
			return keras.KernelConverter(func(kernel tensor.Tensor) tensor.Tensor { return kernel })
		},
	})
}

// Register stores a patch under the given key.
func Register(key string, patch Patch) error {
	key = normalizeKey(key)
	if key == "" {
		return errors.New("patch key required")
	}
	if !modsys.ValidPath(patch.Module) || patch.Attr == "" || patch.Replace == nil {
		return fmt.Errorf("patch %s: module, attr and replace are required", key)
	}
	if _, loaded := registry.LoadOrStore(key, patch); loaded {
		return ErrDuplicatePatch
	}
	return nil
}

// MustRegister panics on registration failure.
func MustRegister(key string, patch Patch) {
	if err := Register(key, patch); err != nil {
		panic(err)
	}
}

// Fetch retrieves the patch associated with a key.
func Fetch(key string) (Patch, bool) {
	key = normalizeKey(key)
	if key == "" {
		return Patch{}, false
	}
	if value, ok := registry.Load(key); ok {
		if patch, ok := value.(Patch); ok {
			return patch, true
		}
	}
	return Patch{}, false
}

// Apply imports the patched module through sys and rebinds its attribute.
// Importing the module may itself trigger installed finders.
func Apply(sys *modsys.System, key string) error {
	patch, ok := Fetch(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrPatchMissing)
	}
	mod, err := sys.Import(patch.Module)
	if err != nil {
		return fmt.Errorf("apply patch %s: %w", key, err)
	}
	current, _ := mod.Attr(patch.Attr)
	mod.SetAttr(patch.Attr, patch.Replace(current))
	return nil
}

// Status returns registration status for a key.
func Status(key string) string {
	if _, ok := Fetch(key); ok {
		return "registered"
	}
	return "missing"
}

// Snapshot returns status for a list of keys.
func Snapshot(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if normalized := normalizeKey(key); normalized != "" {
			out[normalized] = Status(normalized)
		}
	}
	return out
}

// Keys returns all registered keys in sorted order.
func Keys() []string {
	var keys []string
	registry.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
