package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/moodsense/pkg/buildinfo"
)

// NewVersionCommand creates the 'version' command.
func NewVersionCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			info := buildinfo.Get(buildinfo.ServiceName)
			return writeOutput(cmd.OutOrStdout(), format, info, func(w io.Writer) error {
				fmt.Fprintf(w, "%s version %s\n", info.ServiceName, info.Version)
				fmt.Fprintf(w, "  Commit:     %s\n", info.Commit)
				fmt.Fprintf(w, "  Build time: %s\n", info.BuildTime)
				fmt.Fprintf(w, "  Go version: %s\n", info.GoVersion)
				return nil
			})
		},
	}

	outputFlag(cmd, &output)
	return cmd
}
