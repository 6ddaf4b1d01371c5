package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	Version, GitCommit = "1.2.3", "abc123"
	t.Cleanup(func() { Version, GitCommit = "dev", "unknown" })

	info := Get()
	if !strings.HasPrefix(info.String(), "cargo 1.2.3 (abc123)") {
		t.Errorf("unexpected version string %q", info.String())
	}
	if !strings.HasPrefix(info.UserAgent(), "cargo/1.2.3 (") {
		t.Errorf("unexpected user agent %q", info.UserAgent())
	}
	if info.GoVersion == "" || info.Platform == "" {
		t.Errorf("runtime fields not set: %+v", info)
	}
}
