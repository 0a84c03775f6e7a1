package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/gt-mail-gateway/pkg/mailctl/client"
)

func NewSendCommand() *cobra.Command {
	var req client.SendRequest

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			if err := apiClient.Mail().Send(cmd.Context(), req); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Mail sent to %s\n", req.To)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.To, "to", "", "Recipient address (e.g. gastown/witness or mayor/)")
	cmd.Flags().StringVarP(&req.Subject, "subject", "s", "", "Message subject")
	cmd.Flags().StringVarP(&req.Body, "body", "m", "", "Message body")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}
