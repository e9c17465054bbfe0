package keras

import (
	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/tensor"
)

// bindGraphOps 写入 theano 与默认后端共用的图构建/求值函数。
func bindGraphOps(mod *modsys.Module) {
	mod.SetAttr(backend.AttrFunction, tensor.FunctionFactory(tensor.Compile))
	mod.SetAttr(backend.AttrPlaceholder, backend.PlaceholderFunc(func(name string, shape ...int) *tensor.Placeholder {
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
}

// populateTheano 对应 keras.backend.theano_backend。它不提供 floatx/epsilon 等公共定义，
// 这些名字由替换钩子从 keras.backend.common 补齐。
func populateTheano(_ *modsys.System, mod *modsys.Module) error {
	bindGraphOps(mod)
	mod.SetAttr("is_sparse", func(tensor.Op) bool { return false })
	return nil
}

// populateDefaultBackend 是未安装钩子时磁盘上的 keras.backend（tensorflow 占位实现）。
func populateDefaultBackend(sys *modsys.System, mod *modsys.Module) error {
	common, err := sys.Import(backend.CommonPath)
	if err != nil {
		return err
	}
	for name, value := range common.Items() {
		mod.SetAttr(name, value)
	}
	bindGraphOps(mod)
	mod.SetAttr(backend.AttrBackend, backend.NameFunc(func() string { return "tensorflow" }))
	return nil
}
