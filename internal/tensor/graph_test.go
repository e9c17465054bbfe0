package tensor

import (
	"errors"
	"testing"
)

func TestCompileEvaluatesOutputsBeforeUpdates(t *testing.T) {
	x := &Placeholder{Name: "x", Shape: []int{2}}
	w := NewVariable("w", Vector(1, 1))

	fn, err := Compile(
		[]*Placeholder{x},
		[]Op{Multiply(x, w)},
		[]Update{{Var: w, Op: Add(w, x)}},
	)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	out, err := fn([]Tensor{Vector(2, 3)})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !out[0].Equal(Vector(2, 3)) {
		t.Fatalf("output should use pre-update weights, got %v", out[0].Data)
	}
	if got := w.Value(); !got.Equal(Vector(3, 4)) {
		t.Fatalf("update not applied, got %v", got.Data)
	}
}

func TestCompileRejectsWrongArity(t *testing.T) {
	x := &Placeholder{Name: "x"}
	fn, err := Compile([]*Placeholder{x}, []Op{x}, nil)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if _, err := fn(nil); err == nil {
		t.Fatalf("missing inputs should fail")
	}
}

func TestUnfedPlaceholder(t *testing.T) {
	p := &Placeholder{Name: "p"}
	if _, err := p.Eval(Feed{}); !errors.Is(err, ErrUnfed) {
		t.Fatalf("expected ErrUnfed, got %v", err)
	}
}

func TestDotMatrix(t *testing.T) {
	a, _ := New([]int{2, 2}, []float64{1, 2, 3, 4})
	b, _ := New([]int{2, 1}, []float64{1, 1})
	got, err := Dot(&Constant{Value: a}, &Constant{Value: b}).Eval(nil)
	if err != nil {
		t.Fatalf("dot failed: %v", err)
	}
	want, _ := New([]int{2, 1}, []float64{3, 7})
	if !got.Equal(want) {
		t.Fatalf("unexpected result %v", got.Data)
	}
}

func TestShapeMismatch(t *testing.T) {
	_, err := Add(&Constant{Value: Vector(1, 2)}, &Constant{Value: Vector(1, 2, 3)}).Eval(nil)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestSummaryAndFlip(t *testing.T) {
	v := Vector(1, 2, 3, 4)
	if s := v.Summary(); s != "f64[4] min=1 max=4 mean=2.5" {
		t.Fatalf("unexpected summary %q", s)
	}
	if f := Flip(v); !f.Equal(Vector(4, 3, 2, 1)) {
		t.Fatalf("unexpected flip %v", f.Data)
	}
	if !v.Equal(Vector(1, 2, 3, 4)) {
		t.Fatalf("flip must not mutate its input")
	}
}
