package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/newslens/internal/app"
)

// commit returns the ldflags commit, falling back to the VCS revision embedded
// by the Go toolchain.
func commit() string {
	if app.BuildCommit != "unknown" {
		return app.BuildCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				if len(s.Value) > 7 {
					return s.Value[:7]
				}
				return s.Value
			}
		}
	}
	return app.BuildCommit
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newslens version %s\n", app.BuildVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", app.BuildDate)
		},
	}
}
