package cli

import (
	"encoding/json"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build information set via ldflags
//
//nolint:gochecknoglobals // Build variables are set via ldflags during compilation
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// VersionInfo contains version information
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns complete version information, falling back to the
// build info embedded by the Go toolchain when ldflags were not set.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "dev" && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}

	if info.Commit == "unknown" {
		for _, setting := range build.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				if len(setting.Value) > 7 {
					info.Commit = setting.Value[:7]
				} else {
					info.Commit = setting.Value
				}
				break
			}
		}
	}

	if info.BuildDate == "unknown" {
		for _, setting := range build.Settings {
			if setting.Key == "vcs.time" && setting.Value != "" {
				info.BuildDate = setting.Value
				break
			}
		}
	}

	return info
}

// createVersionCmd creates an isolated version command
func createVersionCmd() *cobra.Command {
	var jsonFormat bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := GetVersionInfo()

			if jsonFormat {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			}

			cmd.Printf("prsync %s\n", info.Version)
			cmd.Printf("Commit:     %s\n", info.Commit)
			cmd.Printf("Build Date: %s\n", info.BuildDate)
			cmd.Printf("Go Version: %s\n", info.GoVersion)
			cmd.Printf("Platform:   %s/%s\n", info.OS, info.Arch)

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFormat, "json", false, "Output in JSON format")

	return cmd
}
