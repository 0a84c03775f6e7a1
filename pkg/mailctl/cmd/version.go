package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/gt-mail-gateway/pkg/mailctl/output"
	"github.com/telekom/gt-mail-gateway/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show mailctl version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			// Get runtime if available (for custom writer), but don't fail if missing
			rt, _ := getRuntime(cmd)
			writer := cmd.OutOrStdout()
			format := ""
			if rt != nil {
				writer = rt.Writer()
				format = rt.outputFormat
			}

			switch output.Format(format) {
			case output.FormatJSON, output.FormatYAML:
				return output.WriteObject(writer, output.Format(format), info)
			default:
				_, _ = fmt.Fprintf(writer, "mailctl %s\n", info.String())
				return nil
			}
		},
	}
}
