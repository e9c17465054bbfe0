package site

import (
	"testing"

	"github.com/plaidml/plaidkeras/internal/backend"
)

func TestNewSystemMountsBothTrees(t *testing.T) {
	sys := NewSystem(nil)
	mounted := map[string]bool{}
	for _, loc := range sys.Mounted() {
		mounted[loc] = true
	}
	for _, want := range []string{
		"/site-packages/keras",
		"/site-packages/keras/backend",
		"/site-packages/keras/backend/theano_backend",
		"/site-packages/plaidml/keras/backend",
	} {
		if !mounted[want] {
			t.Fatalf("expected %s to be mounted, got %v", want, sys.Mounted())
		}
	}
	if roots := sys.Roots(); len(roots) != 1 || roots[0] != Root {
		t.Fatalf("unexpected roots %v", roots)
	}
}

func TestWithoutHookKerasUsesOnDiskBackend(t *testing.T) {
	sys := NewSystem(nil)
	mod, err := sys.Import("keras.backend")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	b, err := backend.Bind(mod)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if b.Name() != "tensorflow" {
		t.Fatalf("expected stock backend, got %s", b.Name())
	}
}
