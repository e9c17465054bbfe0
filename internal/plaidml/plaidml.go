// Package plaidml 挂载 plaidml、plaidml.keras 以及默认后端实现 plaidml.keras.backend。
package plaidml

import (
	"fmt"
	"path"
	"strings"
	"sync/atomic"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/tensor"
)

// Mount 将 plaidml 包树挂载到 root 之下。
func Mount(sys *modsys.System, root string) {
	base := path.Join(root, "plaidml")
	sys.Mount(base, modsys.Source{Package: true, Populate: func(_ *modsys.System, mod *modsys.Module) error {
		mod.SetAttr("__version__", "0.3.5")
		return nil
	}})
	sys.Mount(path.Join(base, "keras"), modsys.Source{Package: true})
	sys.Mount(path.Join(base, "keras", "backend"), modsys.Source{Populate: populateBackend})
}

func populateBackend(_ *modsys.System, mod *modsys.Module) error {
	var programs atomic.Int64

	mod.SetAttr(backend.AttrBackend, backend.NameFunc(func() string { return "plaidml" }))
	mod.SetAttr(backend.AttrFunction, tensor.FunctionFactory(func(inputs []*tensor.Placeholder, outputs []tensor.Op, updates []tensor.Update) (tensor.Function, error) {
		fn, err := tensor.Compile(inputs, outputs, updates)
		if err != nil {
			return nil, fmt.Errorf("plaidml: compile program %d: %w", programs.Load()+1, err)
		}
		programs.Add(1)
		return fn, nil
	}))
	mod.SetAttr(backend.AttrPlaceholder, backend.PlaceholderFunc(func(name string, shape ...int) *tensor.Placeholder {
		if name == "" {
			name = fmt.Sprintf("I%d", len(shape))
		}
		return &tensor.Placeholder{Name: name, Shape: append([]int(nil), shape...)}
	}))
	mod.SetAttr(backend.AttrVariable, backend.VariableFunc(tensor.NewVariableFrom))
	mod.SetAttr(backend.AttrConstant, backend.ConstantFunc(func(v tensor.Tensor) tensor.Op {
		return &tensor.Constant{Value: v.Clone()}
	}))
	mod.SetAttr(backend.AttrUpdate, backend.UpdateFunc(func(v *tensor.Variable, op tensor.Op) tensor.Update {
		return tensor.Update{Var: v, Op: op}
	}))
	mod.SetAttr(backend.AttrEval, backend.EvalFunc(func(op tensor.Op) (tensor.Tensor, error) {
		return op.Eval(nil)
	}))
	mod.SetAttr("add", backend.BinaryFunc(tensor.Add))
	mod.SetAttr("subtract", backend.BinaryFunc(tensor.Subtract))
	mod.SetAttr("multiply", backend.BinaryFunc(tensor.Multiply))
	mod.SetAttr("dot", backend.BinaryFunc(tensor.Dot))
	mod.SetAttr(backend.AttrFloatx, backend.NameFunc(func() string { return "float32" }))
	mod.SetAttr(backend.AttrEpsilon, backend.FloatFunc(func() float64 { return 1e-7 }))
	mod.SetAttr("image_data_format", backend.NameFunc(func() string { return "channels_last" }))
	mod.SetAttr(backend.AttrDumpVal, backend.DumpFunc(dumpVal))
	mod.SetAttr("programs_compiled", func() int64 { return programs.Load() })
	return nil
}

// dumpVal 输出运算的可读描述，trace 中 Output/PostUpdate 的注释使用它。
func dumpVal(op tensor.Op) string {
	if op == nil {
		return "<nil>"
	}
	return strings.TrimSpace(op.String())
}
