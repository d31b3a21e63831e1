package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func TestCurrentPrefersBuildVersion(t *testing.T) {
	old := buildVersion
	buildVersion = "v1.2.3"
	t.Cleanup(func() { buildVersion = old })

	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected build version, got %q", got)
	}
}

func TestPseudoFromBuildInfo(t *testing.T) {
	ts := time.Date(2026, time.February, 3, 4, 5, 6, 0, time.UTC)
	info := &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890abcdef"},
			{Key: "vcs.time", Value: ts.Format(time.RFC3339)},
		},
	}
	got := pseudoFromBuildInfo(info)
	if !strings.HasPrefix(got, "v0.0.0-20260203040506-1234567890ab") {
		t.Fatalf("unexpected pseudo version %q", got)
	}
	if pseudoFromBuildInfo(nil) != "" {
		t.Fatalf("expected empty version for nil build info")
	}
}

func TestModuleFallback(t *testing.T) {
	if Module() == "" {
		t.Fatalf("expected non-empty module path")
	}
}
