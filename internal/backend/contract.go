package backend

import (
	"errors"
	"fmt"

	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/tensor"
)

// 后端命名空间中约定的名字。
const (
	AttrBackend     = "backend"
	AttrFunction    = "function"
	AttrPlaceholder = "placeholder"
	AttrVariable    = "variable"
	AttrConstant    = "constant"
	AttrUpdate      = "update"
	AttrEval        = "eval"
	AttrFloatx      = "floatx"
	AttrEpsilon     = "epsilon"
	AttrDumpVal     = "dump_val"
)

// 命名空间绑定的函数签名。使用别名而不是新类型，实现方可以直接写函数字面量。
type (
	NameFunc        = func() string
	PlaceholderFunc = func(name string, shape ...int) *tensor.Placeholder
	VariableFunc    = func(value tensor.Tensor, name string) *tensor.Variable
	ConstantFunc    = func(value tensor.Tensor) tensor.Op
	UpdateFunc      = func(v *tensor.Variable, op tensor.Op) tensor.Update
	EvalFunc        = func(op tensor.Op) (tensor.Tensor, error)
	FloatFunc       = func() float64
	DumpFunc        = func(op tensor.Op) string
	BinaryFunc      = func(a, b tensor.Op) tensor.Op
)

// Backend 是调用方对 keras.backend 的最小能力集合。
type Backend interface {
	Name() string
	Function(inputs []*tensor.Placeholder, outputs []tensor.Op, updates []tensor.Update) (tensor.Function, error)
	Placeholder(name string, shape ...int) *tensor.Placeholder
	Variable(value tensor.Tensor, name string) *tensor.Variable
	Constant(value tensor.Tensor) tensor.Op
	Update(v *tensor.Variable, op tensor.Op) tensor.Update
	Eval(op tensor.Op) (tensor.Tensor, error)
	Floatx() string
	Epsilon() float64
}

// Bind 从模块命名空间构造 Backend，每个方法委托给同名绑定。
// 所有缺失或类型不符的名字会汇总进一个 *ContractError。
func Bind(mod *modsys.Module) (Backend, error) {
	if mod == nil {
		return nil, errors.New("module is nil")
	}
	b := &bound{}
	c := &collector{mod: mod}

	b.name = pick[NameFunc](c, AttrBackend)
	b.function = pick[tensor.FunctionFactory](c, AttrFunction)
	b.placeholder = pick[PlaceholderFunc](c, AttrPlaceholder)
	b.variable = pick[VariableFunc](c, AttrVariable)
	b.constant = pick[ConstantFunc](c, AttrConstant)
	b.update = pick[UpdateFunc](c, AttrUpdate)
	b.eval = pick[EvalFunc](c, AttrEval)
	b.floatx = pick[NameFunc](c, AttrFloatx)
	b.epsilon = pick[FloatFunc](c, AttrEpsilon)

	if err := c.err(); err != nil {
		return nil, err
	}
	return b, nil
}

type collector struct {
	mod      *modsys.Module
	missing  []string
	mistyped []string
}

func (c *collector) err() error {
	if len(c.missing) == 0 && len(c.mistyped) == 0 {
		return nil
	}
	return &ContractError{Module: c.mod.Name(), Missing: c.missing, Mistyped: c.mistyped}
}

func pick[T any](c *collector, name string) T {
	v, err := modsys.Get[T](c.mod, name)
	if err == nil {
		return v
	}
	var typeErr *modsys.TypeError
	if errors.As(err, &typeErr) {
		c.mistyped = append(c.mistyped, fmt.Sprintf("%s (%s)", name, typeErr.Got))
	} else {
		c.missing = append(c.missing, name)
	}
	return v
}

type bound struct {
	name        NameFunc
	function    tensor.FunctionFactory
	placeholder PlaceholderFunc
	variable    VariableFunc
	constant    ConstantFunc
	update      UpdateFunc
	eval        EvalFunc
	floatx      NameFunc
	epsilon     FloatFunc
}

func (b *bound) Name() string { return b.name() }

func (b *bound) Function(inputs []*tensor.Placeholder, outputs []tensor.Op, updates []tensor.Update) (tensor.Function, error) {
	return b.function(inputs, outputs, updates)
}

func (b *bound) Placeholder(name string, shape ...int) *tensor.Placeholder {
	return b.placeholder(name, shape...)
}

func (b *bound) Variable(value tensor.Tensor, name string) *tensor.Variable {
	return b.variable(value, name)
}

func (b *bound) Constant(value tensor.Tensor) tensor.Op { return b.constant(value) }

func (b *bound) Update(v *tensor.Variable, op tensor.Op) tensor.Update { return b.update(v, op) }

func (b *bound) Eval(op tensor.Op) (tensor.Tensor, error) { return b.eval(op) }

func (b *bound) Floatx() string { return b.floatx() }

func (b *bound) Epsilon() float64 { return b.epsilon() }
