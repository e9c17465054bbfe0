package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/plaidml/plaidkeras/internal/config"
	"github.com/plaidml/plaidkeras/internal/hook"
	"github.com/plaidml/plaidkeras/internal/logging"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/server"
	"github.com/plaidml/plaidkeras/internal/site"
)

func newDiagnosticsApp(t *testing.T, backendName string) (*fiber.App, *modsys.System) {
	t.Helper()
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvTraceFile, "")

	logger := logging.NewNop()
	sys := site.NewSystem(logger)
	if _, err := hook.Install(sys, hook.Options{Backend: backendName, Logger: logger}); err != nil {
		t.Fatalf("install: %v", err)
	}

	app, err := server.NewApp(server.AppOptions{Logger: logger, ListenPort: 5000})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	RegisterAll(app, sys)
	server.RegisterFallback(app)
	return app, sys
}

func getJSON(t *testing.T, app *fiber.App, path string, wantStatus int, out any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: expected %d, got %d (%s)", path, wantStatus, resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("GET %s: missing X-Request-ID", path)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("GET %s: decode %s: %v", path, body, err)
		}
	}
}

func TestBackendsRoute(t *testing.T) {
	app, _ := newDiagnosticsApp(t, "plaidml")
	var payload struct {
		Backends []backendPayload `json:"backends"`
		Default  string           `json:"default"`
	}
	getJSON(t, app, "/-/backends", fiber.StatusOK, &payload)
	if payload.Default != "plaidml" {
		t.Fatalf("unexpected default %s", payload.Default)
	}
	if len(payload.Backends) != 2 || payload.Backends[0].Name != "plaidml" || payload.Backends[1].Name != "theano" {
		t.Fatalf("unexpected backends %+v", payload.Backends)
	}
	if payload.Backends[1].ImplPath != "keras.backend.theano_backend" {
		t.Fatalf("unexpected theano impl path %s", payload.Backends[1].ImplPath)
	}
}

func TestModulesRoutes(t *testing.T) {
	app, _ := newDiagnosticsApp(t, "theano")

	var list struct {
		Modules []modulePayload `json:"modules"`
	}
	getJSON(t, app, "/-/modules", fiber.StatusOK, &list)
	found := false
	for _, m := range list.Modules {
		if m.Name == "keras.backend" {
			found = true
			if !m.Complete || !m.Package {
				t.Fatalf("unexpected keras.backend payload %+v", m)
			}
		}
	}
	if !found {
		t.Fatalf("keras.backend should be listed after install")
	}

	var detail modulePayload
	getJSON(t, app, "/-/modules/keras.backend", fiber.StatusOK, &detail)
	if _, ok := detail.Attrs["backend"]; !ok {
		t.Fatalf("detail should list backend accessor, got %v", detail.Attrs)
	}
	if detail.Attrs["theano_backend"] != "module:keras.backend.theano_backend" {
		t.Fatalf("submodule should be described, got %q", detail.Attrs["theano_backend"])
	}

	getJSON(t, app, "/-/modules/keras..backend", fiber.StatusBadRequest, nil)
	getJSON(t, app, "/-/modules/plaidml.keras.backend", fiber.StatusNotFound, nil)
	getJSON(t, app, "/-/modules/plaidml.keras.backend?import=1", fiber.StatusOK, &detail)
	if detail.Name != "plaidml.keras.backend" || !detail.Complete {
		t.Fatalf("import should load module, got %+v", detail)
	}
	getJSON(t, app, "/-/modules/keras.missing?import=true", fiber.StatusNotFound, nil)
}

func TestFindersRoute(t *testing.T) {
	app, _ := newDiagnosticsApp(t, "plaidml")
	var payload struct {
		Finders []finderPayload `json:"finders"`
	}
	getJSON(t, app, "/-/finders", fiber.StatusOK, &payload)
	if len(payload.Finders) != 1 || payload.Finders[0].Hook == nil {
		t.Fatalf("expected one hook finder, got %+v", payload.Finders)
	}
	info := payload.Finders[0].Hook
	if info.Target != "keras.backend" || info.Backend != "plaidml" || info.State != "resolved" {
		t.Fatalf("unexpected finder info %+v", info)
	}
}

func TestPatchesRoute(t *testing.T) {
	app, _ := newDiagnosticsApp(t, "plaidml")
	var payload struct {
		Patches  []patchPayload    `json:"patches"`
		Registry map[string]string `json:"registry"`
	}
	getJSON(t, app, "/-/patches", fiber.StatusOK, &payload)
	if payload.Registry["convert_kernel"] != "registered" {
		t.Fatalf("convert_kernel should be registered, got %v", payload.Registry)
	}
	var found bool
	for _, p := range payload.Patches {
		if p.Key == "convert_kernel" && p.Module == "keras.utils.conv_utils" {
			found = true
		}
	}
	if !found {
		t.Fatalf("convert_kernel patch missing from %+v", payload.Patches)
	}
}

func TestEncodeFindersReportsForeignTypes(t *testing.T) {
	foreign := modsys.Hook(func(string) bool { return false }, nil)
	encoded := encodeFinders([]modsys.Finder{foreign})
	if len(encoded) != 1 || encoded[0].Hook != nil || encoded[0].Type == "" {
		t.Fatalf("unexpected payload %+v", encoded)
	}
}

func TestUnknownDiagnosticsPath(t *testing.T) {
	app, _ := newDiagnosticsApp(t, "plaidml")
	getJSON(t, app, "/-/nothing", fiber.StatusNotFound, nil)
}
