package cli

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/aidanlsb/dbref/internal/buildinfo"
)

func TestCurrentVersionInfoFromBuildInfo(t *testing.T) {
	prevRead := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = prevRead
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.23.2",
			Main: debug.Module{
				Path:    "github.com/aidanlsb/dbref",
				Version: "v0.3.0",
			},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0c1d2e3"},
				{Key: "vcs.time", Value: "2026-09-30T08:15:00Z"},
				{Key: "vcs.modified", Value: "true"},
				{Key: "GOOS", Value: "linux"},
				{Key: "GOARCH", Value: "arm64"},
			},
		}, true
	}

	info := currentVersionInfo()

	if info.Version != "v0.3.0" {
		t.Fatalf("Version = %q, want %q", info.Version, "v0.3.0")
	}
	if info.ModulePath != "github.com/aidanlsb/dbref" {
		t.Fatalf("ModulePath = %q, want %q", info.ModulePath, "github.com/aidanlsb/dbref")
	}
	if info.Commit != "0c1d2e3" {
		t.Fatalf("Commit = %q, want %q", info.Commit, "0c1d2e3")
	}
	if info.CommitTime != "2026-09-30T08:15:00Z" {
		t.Fatalf("CommitTime = %q, want %q", info.CommitTime, "2026-09-30T08:15:00Z")
	}
	if !info.Modified {
		t.Fatal("Modified = false, want true")
	}
	if info.GoVersion != "go1.23.2" {
		t.Fatalf("GoVersion = %q, want %q", info.GoVersion, "go1.23.2")
	}
	if info.GOOS != "linux" {
		t.Fatalf("GOOS = %q, want %q", info.GOOS, "linux")
	}
	if info.GOARCH != "arm64" {
		t.Fatalf("GOARCH = %q, want %q", info.GOARCH, "arm64")
	}
}

func TestCurrentVersionInfoFallbackWhenBuildInfoMissing(t *testing.T) {
	prevRead := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = prevRead
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return nil, false
	}

	info := currentVersionInfo()

	if info.Version != "devel" {
		t.Fatalf("Version = %q, want %q", info.Version, "devel")
	}
	if info.ModulePath != defaultModulePath {
		t.Fatalf("ModulePath = %q, want %q", info.ModulePath, defaultModulePath)
	}
	if info.GoVersion != runtime.Version() {
		t.Fatalf("GoVersion = %q, want runtime %q", info.GoVersion, runtime.Version())
	}
	if info.GOOS != runtime.GOOS {
		t.Fatalf("GOOS = %q, want runtime %q", info.GOOS, runtime.GOOS)
	}
	if info.GOARCH != runtime.GOARCH {
		t.Fatalf("GOARCH = %q, want runtime %q", info.GOARCH, runtime.GOARCH)
	}
}

func TestVersionCommandJSONOutput(t *testing.T) {
	prevRead := readBuildInfo
	prevJSON := jsonOutput
	t.Cleanup(func() {
		readBuildInfo = prevRead
		jsonOutput = prevJSON
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Path: "github.com/aidanlsb/dbref", Version: "(devel)"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "deadbeef"}},
		}, true
	}
	jsonOutput = true

	resp := mustSucceed(t, run(t, func() error { return versionCmd.RunE(versionCmd, nil) }))
	var info versionInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != "devel" {
		t.Fatalf("Version = %q, want %q", info.Version, "devel")
	}
	if info.Commit != "deadbeef" {
		t.Fatalf("Commit = %q, want %q", info.Commit, "deadbeef")
	}
}

func TestCurrentVersionInfoLinkerValues(t *testing.T) {
	prevRead := readBuildInfo
	prevVersion, prevCommit, prevDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() {
		readBuildInfo = prevRead
		buildinfo.Version, buildinfo.Commit, buildinfo.Date = prevVersion, prevCommit, prevDate
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Path: "github.com/aidanlsb/dbref", Version: "(devel)"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
		}, true
	}
	buildinfo.Version = "v1.2.0"
	buildinfo.Commit = "ignored"
	buildinfo.Date = "2026-10-01"

	info := currentVersionInfo()

	if info.Version != "v1.2.0" {
		t.Fatalf("Version = %q, want %q", info.Version, "v1.2.0")
	}
	if info.Commit != "abc123" {
		t.Fatalf("Commit = %q, want build info revision %q", info.Commit, "abc123")
	}
	if info.CommitTime != "2026-10-01" {
		t.Fatalf("CommitTime = %q, want %q", info.CommitTime, "2026-10-01")
	}
}
