package tensor

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnfed 表示求值时某个占位符没有绑定输入。
var ErrUnfed = errors.New("placeholder not fed")

// Feed 将占位符绑定到本次调用的输入值。
type Feed map[*Placeholder]Tensor

// Op 是计算图中的节点。
type Op interface {
	Eval(feed Feed) (Tensor, error)
	String() string
}

// Placeholder 代表函数的一个输入位置。
type Placeholder struct {
	Name  string
	Shape []int
}

// Eval 从 feed 中取出绑定值。
func (p *Placeholder) Eval(feed Feed) (Tensor, error) {
	if v, ok := feed[p]; ok {
		return v, nil
	}
	return Tensor{}, fmt.Errorf("%s: %w", p.Name, ErrUnfed)
}

func (p *Placeholder) String() string {
	return "placeholder(" + p.Name + ")"
}

// Variable 是跨调用保持状态的张量，Update 会在函数调用后写回。
type Variable struct {
	Name string

	mu    sync.RWMutex
	value Tensor
}

// NewVariable 以初始值创建变量。
func NewVariable(name string, initial Tensor) *Variable {
	return &Variable{Name: name, value: initial.Clone()}
}

// NewVariableFrom 参数顺序与 keras.backend.variable(value, name) 一致。
func NewVariableFrom(value Tensor, name string) *Variable {
	return NewVariable(name, value)
}

// Value 返回当前值的副本。
func (v *Variable) Value() Tensor {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value.Clone()
}

// Assign 覆盖变量的当前值。
func (v *Variable) Assign(t Tensor) {
	v.mu.Lock()
	v.value = t.Clone()
	v.mu.Unlock()
}

// Eval 返回变量当前值，与 feed 无关。
func (v *Variable) Eval(Feed) (Tensor, error) {
	return v.Value(), nil
}

func (v *Variable) String() string {
	return "variable(" + v.Name + ")"
}

// Constant 是固定值节点。
type Constant struct {
	Value Tensor
}

// Eval 返回常量副本。
func (c *Constant) Eval(Feed) (Tensor, error) {
	return c.Value.Clone(), nil
}

func (c *Constant) String() string {
	return "constant(" + c.Value.Summary() + ")"
}

// Binary 描述二元运算节点。
type Binary struct {
	Name string
	A, B Op

	kernel func(a, b Tensor) (Tensor, error)
}

// Eval 先求两侧再调用内核。
func (n *Binary) Eval(feed Feed) (Tensor, error) {
	a, err := n.A.Eval(feed)
	if err != nil {
		return Tensor{}, err
	}
	b, err := n.B.Eval(feed)
	if err != nil {
		return Tensor{}, err
	}
	out, err := n.kernel(a, b)
	if err != nil {
		return Tensor{}, fmt.Errorf("%s: %w", n.Name, err)
	}
	return out, nil
}

func (n *Binary) String() string {
	return n.Name + "(" + n.A.String() + ", " + n.B.String() + ")"
}

// Add 构造逐元素加法节点。
func Add(a, b Op) Op { return &Binary{Name: "add", A: a, B: b, kernel: addKernel} }

// Subtract 构造逐元素减法节点。
func Subtract(a, b Op) Op { return &Binary{Name: "subtract", A: a, B: b, kernel: subKernel} }

// Multiply 构造逐元素乘法节点。
func Multiply(a, b Op) Op { return &Binary{Name: "multiply", A: a, B: b, kernel: mulKernel} }

// Dot 构造内积/矩阵乘法节点。
func Dot(a, b Op) Op { return &Binary{Name: "dot", A: a, B: b, kernel: dotKernel} }

// Update 描述一次 (变量, 新值) 赋值，在函数调用结束时生效。
type Update struct {
	Var *Variable
	Op  Op
}

// Function 是由 FunctionFactory 构建的可调用对象。
type Function func(inputs []Tensor) ([]Tensor, error)

// FunctionFactory 对应 keras.backend.function(inputs, outputs, updates)。
type FunctionFactory func(inputs []*Placeholder, outputs []Op, updates []Update) (Function, error)

// Compile 是两个后端共用的 FunctionFactory 实现：
// 输出与更新值都基于调用前的变量状态求值，之后统一写回变量。
func Compile(inputs []*Placeholder, outputs []Op, updates []Update) (Function, error) {
	for i, p := range inputs {
		if p == nil {
			return nil, fmt.Errorf("input %d is nil", i)
		}
	}
	for i, op := range outputs {
		if op == nil {
			return nil, fmt.Errorf("output %d is nil", i)
		}
	}
	for i, u := range updates {
		if u.Var == nil || u.Op == nil {
			return nil, fmt.Errorf("update %d is incomplete", i)
		}
	}

	ins := append([]*Placeholder(nil), inputs...)
	outs := append([]Op(nil), outputs...)
	ups := append([]Update(nil), updates...)

	return func(values []Tensor) ([]Tensor, error) {
		if len(values) != len(ins) {
			return nil, fmt.Errorf("expected %d inputs, got %d", len(ins), len(values))
		}
		feed := make(Feed, len(ins))
		for i, p := range ins {
			feed[p] = values[i]
		}

		results := make([]Tensor, len(outs))
		for i, op := range outs {
			v, err := op.Eval(feed)
			if err != nil {
				return nil, err
			}
			results[i] = v
		}

		pending := make([]Tensor, len(ups))
		for i, u := range ups {
			v, err := u.Op.Eval(feed)
			if err != nil {
				return nil, err
			}
			pending[i] = v
		}
		for i, u := range ups {
			u.Var.Assign(pending[i])
		}
		return results, nil
	}, nil
}
