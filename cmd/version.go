package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pagekit",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionString(Version, info))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionString reports the ldflags version, falling back to the module
// version for "go install" builds, plus the VCS revision when recorded.
func versionString(version string, info *debug.BuildInfo) string {
	if info == nil {
		return "pagekit " + version
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	out := fmt.Sprintf("pagekit %s (%s)", version, info.GoVersion)
	if rev != "" {
		out += " " + rev
		if dirty {
			out += "-dirty"
		}
	}
	return out
}
