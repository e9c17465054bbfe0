package version

import (
	"strings"
	"testing"
)

func TestFullContainsVersionAndCommit(t *testing.T) {
	prevVersion, prevCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = prevVersion, prevCommit })

	Version, Commit = "1.2.3", "abc123"
	full := Full()
	if !strings.HasPrefix(full, "plaidkeras 1.2.3 (abc123") {
		t.Fatalf("unexpected version string %q", full)
	}
	if Fields()["commit"] != "abc123" {
		t.Fatalf("fields should reflect injected commit")
	}
}
