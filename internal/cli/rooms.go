package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brentkao/roomcoord/internal/protocol"
)

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List public rooms",
		Long: `List public rooms over a coordinator session. The session uses a ticket
when a credential is stored and is anonymous otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := client.Connect(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			env, err := session.Request(ctx, protocol.TypePublicRoomList, nil)
			if err != nil {
				return err
			}

			var list protocol.RoomListData
			if err := json.Unmarshal(env.Data, &list); err != nil {
				return fmt.Errorf("failed to parse room list: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()).Print(list)
			return nil
		},
	}
}
