// Package tensor 提供后端实现共享的最小数值内核：稠密 float64 张量、
// 占位符/变量/常量组成的计算图，以及 keras.backend.function 所需的函数工厂类型。
package tensor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrShapeMismatch 表示两个张量的形状无法参与同一运算。
var ErrShapeMismatch = errors.New("tensor shape mismatch")

// Tensor 是按行优先存储的稠密张量，Shape 为空表示标量。
type Tensor struct {
	Shape []int
	Data  []float64
}

// New 校验形状与数据长度后构造张量，数据会被复制。
func New(shape []int, data []float64) (Tensor, error) {
	size := 1
	for _, dim := range shape {
		if dim < 0 {
			return Tensor{}, fmt.Errorf("negative dimension %d: %w", dim, ErrShapeMismatch)
		}
		size *= dim
	}
	if size != len(data) {
		return Tensor{}, fmt.Errorf("shape %v needs %d values, got %d: %w", shape, size, len(data), ErrShapeMismatch)
	}
	return Tensor{
		Shape: append([]int(nil), shape...),
		Data:  append([]float64(nil), data...),
	}, nil
}

// Scalar 构造零维张量。
func Scalar(v float64) Tensor {
	return Tensor{Data: []float64{v}}
}

// Vector 构造一维张量。
func Vector(values ...float64) Tensor {
	return Tensor{
		Shape: []int{len(values)},
		Data:  append([]float64(nil), values...),
	}
}

// Zeros 构造指定形状的全零张量。
func Zeros(shape ...int) Tensor {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return Tensor{
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, size),
	}
}

// Size 返回元素个数。
func (t Tensor) Size() int {
	return len(t.Data)
}

// Rank 返回维度数。
func (t Tensor) Rank() int {
	return len(t.Shape)
}

// Clone 深拷贝张量，避免变量赋值时共享底层数组。
func (t Tensor) Clone() Tensor {
	return Tensor{
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float64(nil), t.Data...),
	}
}

// Equal 比较形状与数值是否完全一致。
func (t Tensor) Equal(other Tensor) bool {
	if !sameShape(t.Shape, other.Shape) || len(t.Data) != len(other.Data) {
		return false
	}
	for i := range t.Data {
		if t.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// Summary 输出 trace 使用的值摘要，例如 f64[2,2] min=1 max=4 mean=2.5。
func (t Tensor) Summary() string {
	var b strings.Builder
	b.WriteString("f64[")
	for i, dim := range t.Shape {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(dim))
	}
	b.WriteByte(']')
	if len(t.Data) == 0 {
		b.WriteString(" empty")
		return b.String()
	}
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range t.Data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	fmt.Fprintf(&b, " min=%s max=%s mean=%s",
		formatFloat(lo), formatFloat(hi), formatFloat(sum/float64(len(t.Data))))
	return b.String()
}

// String 便于调试输出。
func (t Tensor) String() string {
	return t.Summary()
}

// Flip 沿所有轴反转元素顺序，keras 的 convert_kernel 用它在 theano/tensorflow 卷积核之间转换。
func Flip(t Tensor) Tensor {
	out := t.Clone()
	for i, j := 0, len(out.Data)-1; i < j; i, j = i+1, j-1 {
		out.Data[i], out.Data[j] = out.Data[j], out.Data[i]
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
