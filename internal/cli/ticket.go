package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newTicketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticket",
		Short: "Mint a single-use connection ticket",
		Long: `Mint a ticket for the stored credential. A ticket is redeemed once by
connecting to /ws?token=<ticket> and expires shortly after it is issued.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.HasToken() {
				return errors.New("no credential: run guest, register or login first")
			}

			result, err := client.MintTicket(cmd.Context())
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()).Print(result)
			return nil
		},
	}
}
