package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the eer CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = versionMajorColor.Sprint("1") + "." + versionMinorColor.Sprint("2") + "." + versionPatchColor.Sprint("0")

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// String is the line printed by --version.
func String() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	var extra []string
	if c := strings.TrimSpace(GitCommit); c != "" {
		if len(c) > 12 {
			c = c[:12]
		}
		extra = append(extra, c)
	}
	if d := strings.TrimSpace(BuildDate); d != "" {
		extra = append(extra, d)
	}
	if len(extra) == 0 {
		return "eer " + v
	}
	return "eer " + v + " (" + strings.Join(extra, ", ") + ")"
}
