package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/gt-mail-gateway/pkg/mailctl/client"
	"github.com/telekom/gt-mail-gateway/pkg/mailctl/output"
)

func NewInboxCommand() *cobra.Command {
	var opts client.InboxOptions

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List messages in a mailbox",
		Long: "List messages in a mailbox. Without --agent the gateway's default inbox is shown.\n" +
			"--rig qualifies a bare agent name as <rig>/<agent>.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			inbox, err := apiClient.Mail().Inbox(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !inbox.Available {
				_, _ = fmt.Fprintln(rt.ErrWriter(), "(gateway unavailable)")
			}
			switch format {
			case output.FormatJSON, output.FormatYAML:
				return output.WriteObject(rt.Writer(), format, inbox)
			default:
				output.WriteInboxTable(rt.Writer(), inbox.Messages)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&opts.Agent, "agent", "", "Agent whose inbox to list (e.g. witness or gastown/witness)")
	cmd.Flags().StringVar(&opts.Rig, "rig", "", "Rig qualifying a bare agent name")

	return cmd
}
