package modsys

import (
	"errors"
	"testing"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	sys := NewSystem("/site")
	sys.Mount("/site/pkg", Source{Package: true, Populate: func(_ *System, mod *Module) error {
		mod.SetAttr("version", "1.0")
		return nil
	}})
	sys.Mount("/site/pkg/leaf", Source{Populate: func(_ *System, mod *Module) error {
		mod.SetAttr("answer", 42)
		return nil
	}})
	return sys
}

func TestImportFromSourceBindsChildOnParent(t *testing.T) {
	sys := newTestSystem(t)

	leaf, err := sys.Import("pkg.leaf")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !leaf.Complete() {
		t.Fatalf("module should be complete after import")
	}
	answer, err := Get[int](leaf, "answer")
	if err != nil || answer != 42 {
		t.Fatalf("unexpected answer %v (%v)", answer, err)
	}

	pkg, ok := sys.Lookup("pkg")
	if !ok {
		t.Fatalf("parent should be cached")
	}
	bound, err := pkg.Attr("leaf")
	if err != nil || bound != leaf {
		t.Fatalf("child should be bound on parent: %v", err)
	}
	if got := pkg.SearchPath(); len(got) != 1 || got[0] != "/site/pkg" {
		t.Fatalf("unexpected package search path %v", got)
	}
	if leaf.IsPackage() {
		t.Fatalf("leaf module should not be a package")
	}
}

func TestImportIsMemoized(t *testing.T) {
	sys := newTestSystem(t)
	first, err := sys.Import("pkg.leaf")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	second, err := sys.Import("pkg.leaf")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if first != second {
		t.Fatalf("second import should return the cached module")
	}
}

func TestImportMissingModule(t *testing.T) {
	sys := newTestSystem(t)
	for _, path := range []string{"nope", "pkg.nope", "pkg.leaf.deeper", "", "pkg..leaf"} {
		if _, err := sys.Import(path); !errors.Is(err, ErrModuleNotFound) {
			t.Fatalf("%q: expected ErrModuleNotFound, got %v", path, err)
		}
	}
}

func TestFinderTakesPrecedenceOverSource(t *testing.T) {
	sys := newTestSystem(t)
	calls := 0
	sys.Register(Hook(
		func(path string) bool { return path == "pkg.leaf" },
		func(s *System, path string) (*Module, error) {
			calls++
			mod := NewModule(path)
			s.Publish(mod)
			mod.SetAttr("answer", 7)
			mod.MarkComplete()
			return mod, nil
		},
	))

	for i := 0; i < 2; i++ {
		leaf, err := sys.Import("pkg.leaf")
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if v, _ := Get[int](leaf, "answer"); v != 7 {
			t.Fatalf("finder module should win, got %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("factory should run once, ran %d times", calls)
	}
	if _, err := sys.Import("pkg"); err != nil {
		t.Fatalf("unclaimed path should fall through: %v", err)
	}
}

func TestFailedLoadIsForgotten(t *testing.T) {
	sys := NewSystem("/site")
	boom := errors.New("boom")
	sys.Mount("/site/bad", Source{Populate: func(*System, *Module) error { return boom }})

	if _, err := sys.Import("bad"); !errors.Is(err, boom) {
		t.Fatalf("expected populate error, got %v", err)
	}
	if _, ok := sys.Lookup("bad"); ok {
		t.Fatalf("failed module must not stay cached")
	}
}

func TestIncompleteModuleAttributeError(t *testing.T) {
	mod := NewModule("half")
	_, err := mod.Attr("missing")
	var attrErr *AttributeError
	if !errors.As(err, &attrErr) || !attrErr.Incomplete {
		t.Fatalf("expected incomplete attribute error, got %v", err)
	}
	if !errors.Is(err, ErrAttributeNotFound) {
		t.Fatalf("attribute error should match sentinel")
	}

	mod.MarkComplete()
	_, err = mod.Attr("missing")
	if !errors.As(err, &attrErr) || attrErr.Incomplete {
		t.Fatalf("complete module should report plain missing attribute, got %v", err)
	}
}

func TestGetTypeMismatch(t *testing.T) {
	mod := NewModule("m")
	mod.SetAttr("n", "text")
	var typeErr *TypeError
	if _, err := Get[int](mod, "n"); !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestRegisterAppends(t *testing.T) {
	sys := NewSystem()
	f := Hook(func(string) bool { return false }, nil)
	sys.Register(f)
	sys.Register(f)
	if got := len(sys.Finders()); got != 2 {
		t.Fatalf("expected 2 finders, got %d", got)
	}
}
