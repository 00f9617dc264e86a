package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Main:      debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
		},
	}

	got := fromBuildInfo(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	want := Info{Version: "v0.3.0", Commit: "abc123", Date: "2025-01-02T03:04:05Z", GoVersion: "go1.24.0"}
	if got != want {
		t.Errorf("fromBuildInfo() = %+v, want %+v", got, want)
	}
}

func TestFromBuildInfoKeepsLdflags(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}

	got := fromBuildInfo(Info{Version: "v1.0.0", Commit: "fff", Date: "today"}, bi)
	if got.Version != "v1.0.0" || got.Commit != "fff" || got.Date != "today" {
		t.Errorf("ldflags values overwritten: %+v", got)
	}

	got = fromBuildInfo(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	if got.Version != "dev" {
		t.Errorf("Version = %q, want dev for a devel build", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(String(), "commit: ") {
		t.Errorf("String() = %q", String())
	}
}
