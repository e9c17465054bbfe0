package keras

import (
	"errors"
	"testing"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/tensor"
)

func newSystem(t *testing.T) *modsys.System {
	t.Helper()
	sys := modsys.NewSystem("/lib")
	Mount(sys, "/lib")
	return sys
}

func TestImportKerasPullsInBackend(t *testing.T) {
	sys := newSystem(t)
	k, err := sys.Import("keras")
	if err != nil {
		t.Fatalf("import keras: %v", err)
	}
	if _, ok := sys.Lookup("keras.backend"); !ok {
		t.Fatalf("keras should import keras.backend during init")
	}
	if !k.Has("backend") {
		t.Fatalf("keras.backend should be bound on the parent")
	}
}

func TestConvertKernelFlips(t *testing.T) {
	sys := newSystem(t)
	mod, err := sys.Import("keras.utils.conv_utils")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	convert, err := modsys.Get[KernelConverter](mod, "convert_kernel")
	if err != nil {
		t.Fatalf("convert_kernel: %v", err)
	}
	got := convert(tensor.Vector(1, 2, 3))
	if !got.Equal(tensor.Vector(3, 2, 1)) {
		t.Fatalf("expected flipped kernel, got %v", got)
	}
}

func TestConvOutputLength(t *testing.T) {
	cases := []struct {
		padding string
		want    int
	}{
		{"same", 5},
		{"valid", 4},
		{"full", 6},
	}
	for _, tc := range cases {
		got, err := convOutputLength(10, 3, tc.padding, 2)
		if err != nil {
			t.Fatalf("%s: %v", tc.padding, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.padding, tc.want, got)
		}
	}
	if _, err := convOutputLength(10, 3, "bogus", 1); err == nil {
		t.Fatalf("expected unsupported padding error")
	}
	if _, err := convOutputLength(10, 3, "same", 0); err == nil {
		t.Fatalf("expected stride error")
	}
}

func TestTheanoBackendLacksCommonDefinitions(t *testing.T) {
	sys := newSystem(t)
	mod, err := sys.Import("keras.backend.theano_backend")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !mod.Has(backend.AttrFunction) {
		t.Fatalf("theano backend should provide function")
	}
	_, err = mod.Attr(backend.AttrFloatx)
	var attrErr *modsys.AttributeError
	if !errors.As(err, &attrErr) || attrErr.Incomplete {
		t.Fatalf("expected plain attribute error for floatx, got %v", err)
	}
}

func TestCommonSettings(t *testing.T) {
	sys := newSystem(t)
	mod, err := sys.Import("keras.backend.common")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	setFloatx, err := modsys.Get[func(string) error](mod, "set_floatx")
	if err != nil {
		t.Fatalf("set_floatx: %v", err)
	}
	floatx, _ := modsys.Get[backend.NameFunc](mod, backend.AttrFloatx)
	if err := setFloatx("float64"); err != nil {
		t.Fatalf("set float64: %v", err)
	}
	if floatx() != "float64" {
		t.Fatalf("expected float64, got %s", floatx())
	}
	if err := setFloatx("int8"); err == nil {
		t.Fatalf("expected unknown floatx error")
	}

	other := newSystem(t)
	otherMod, _ := other.Import("keras.backend.common")
	otherFloatx, _ := modsys.Get[backend.NameFunc](otherMod, backend.AttrFloatx)
	if otherFloatx() != "float32" {
		t.Fatalf("settings must not leak between systems, got %s", otherFloatx())
	}
}
