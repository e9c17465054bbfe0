package tensor

import "fmt"

// elementwise 对两个形状相同的张量逐元素运算；任一侧为标量时广播。
func elementwise(a, b Tensor, fn func(x, y float64) float64) (Tensor, error) {
	switch {
	case a.Size() == 1 && b.Size() != 1:
		out := b.Clone()
		for i, v := range out.Data {
			out.Data[i] = fn(a.Data[0], v)
		}
		return out, nil
	case b.Size() == 1 && a.Size() != 1:
		out := a.Clone()
		for i, v := range out.Data {
			out.Data[i] = fn(v, b.Data[0])
		}
		return out, nil
	}
	if !sameShape(a.Shape, b.Shape) || a.Size() != b.Size() {
		return Tensor{}, fmt.Errorf("%v vs %v: %w", a.Shape, b.Shape, ErrShapeMismatch)
	}
	out := a.Clone()
	for i := range out.Data {
		out.Data[i] = fn(a.Data[i], b.Data[i])
	}
	return out, nil
}

func addKernel(a, b Tensor) (Tensor, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x + y })
}

func subKernel(a, b Tensor) (Tensor, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x - y })
}

func mulKernel(a, b Tensor) (Tensor, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x * y })
}

// dotKernel 支持向量内积与二维矩阵乘法。
func dotKernel(a, b Tensor) (Tensor, error) {
	switch {
	case a.Rank() == 1 && b.Rank() == 1:
		if a.Shape[0] != b.Shape[0] {
			return Tensor{}, fmt.Errorf("dot %v·%v: %w", a.Shape, b.Shape, ErrShapeMismatch)
		}
		sum := 0.0
		for i := range a.Data {
			sum += a.Data[i] * b.Data[i]
		}
		return Scalar(sum), nil
	case a.Rank() == 2 && b.Rank() == 2:
		rows, inner, cols := a.Shape[0], a.Shape[1], b.Shape[1]
		if inner != b.Shape[0] {
			return Tensor{}, fmt.Errorf("dot %v·%v: %w", a.Shape, b.Shape, ErrShapeMismatch)
		}
		out := Zeros(rows, cols)
		for i := 0; i < rows; i++ {
			for k := 0; k < inner; k++ {
				av := a.Data[i*inner+k]
				for j := 0; j < cols; j++ {
					out.Data[i*cols+j] += av * b.Data[k*cols+j]
				}
			}
		}
		return out, nil
	default:
		return Tensor{}, fmt.Errorf("dot of rank %d and %d unsupported: %w", a.Rank(), b.Rank(), ErrShapeMismatch)
	}
}
