package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Check server health and show live connection and room counts.
With --wait, retry until the server answers or the duration elapses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if wait > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, wait)
				defer cancel()
			}

			var result HealthResult
			err := client.Get(ctx, "/api/v1/health", &result)
			for err != nil && wait > 0 {
				select {
				case <-ctx.Done():
					return err
				case <-time.After(200 * time.Millisecond):
				}
				err = client.Get(ctx, "/api/v1/health", &result)
			}
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Retry until healthy for up to this long")

	return cmd
}
