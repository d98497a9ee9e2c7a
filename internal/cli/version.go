package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/dbref/internal/buildinfo"
	"github.com/aidanlsb/dbref/internal/ui"
)

const (
	defaultModulePath = "github.com/aidanlsb/dbref"
	develVersion      = "devel"
)

type versionInfo struct {
	Version    string `json:"version"`
	ModulePath string `json:"module_path"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show dbref version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		if isJSONOutput() {
			respond(info, nil)
			return nil
		}

		fmt.Println(ui.Bold.Render("dbref " + info.Version))
		for _, row := range info.rows() {
			if row[1] != "" {
				fmt.Printf("%s %s\n", ui.Muted.Render(row[0]+":"), row[1])
			}
		}
		return nil
	},
}

// rows lists the text-mode fields in display order.
func (v versionInfo) rows() [][2]string {
	return [][2]string{
		{"module", v.ModulePath},
		{"commit", v.Commit},
		{"commit_time", v.CommitTime},
		{"go", v.GoVersion},
		{"platform", v.GOOS + "/" + v.GOARCH},
		{"modified", strconv.FormatBool(v.Modified)},
	}
}

// currentVersionInfo layers embedded build info and then -ldflags values over
// the runtime defaults. Later layers only fill fields still empty.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		ModulePath: defaultModulePath,
		GoVersion:  runtime.Version(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}
	if bi, ok := readBuildInfo(); ok && bi != nil {
		info.mergeBuildInfo(bi)
	}
	fill(&info.Version, buildinfo.Version)
	fill(&info.Commit, buildinfo.Commit)
	fill(&info.CommitTime, buildinfo.Date)
	fill(&info.Version, develVersion)
	return info
}

func (v *versionInfo) mergeBuildInfo(bi *debug.BuildInfo) {
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if bi.Main.Path != "" {
		v.ModulePath = bi.Main.Path
	}
	// Local builds report "(devel)"; leave Version empty so -ldflags can fill it.
	if bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	if bi.GoVersion != "" {
		v.GoVersion = bi.GoVersion
	}
	if goos := settings["GOOS"]; goos != "" {
		v.GOOS = goos
	}
	if goarch := settings["GOARCH"]; goarch != "" {
		v.GOARCH = goarch
	}
	v.Commit = settings["vcs.revision"]
	v.CommitTime = settings["vcs.time"]
	v.Modified = strings.EqualFold(settings["vcs.modified"], "true")
}

// fill sets *dst to value when *dst is empty.
func fill(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
