package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/brentkao/roomcoord/internal/protocol"
)

func newConnectCmd() *cobra.Command {
	var until string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Open an interactive coordinator session",
		Long: `Open a websocket session and relay envelopes.

Each input line is "<type> [json]" and is sent as one envelope, e.g.

  create-room {"isPublic":true,"detail":{"size":2}}
  game-make-move {"x":3,"y":4}
  ping {"timestamp":"1"}

Every envelope received is printed. Lines starting with # are ignored.
The session ends when input is exhausted, or with --until, once input is
exhausted and an envelope of that type has arrived.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			session, err := client.Connect(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return relay(ctx, session, cmd.InOrStdin(), out, protocol.MessageType(until))
		},
	}

	cmd.Flags().StringVar(&until, "until", "", "After input ends, wait for an envelope of this type")

	return cmd
}

// errStop ends the relay without reporting a failure
var errStop = errors.New("stop")

// relay pumps input lines to the session and prints everything received
func relay(ctx context.Context, session *Session, in io.Reader, out *Output, until protocol.MessageType) error {
	lines, scanErr := scanLines(in)

	inputDone := make(chan struct{})
	untilSeen := make(chan struct{})
	var seenOnce sync.Once
	if until == "" {
		seenOnce.Do(func() { close(untilSeen) })
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(inputDone)
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return scanErr()
				}
				t, data, err := parseLine(line)
				if err != nil {
					out.PrintError(err)
					continue
				}
				if err := session.Send(ctx, t, data); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		for {
			env, err := session.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if status := websocket.CloseStatus(err); status != -1 {
					out.PrintMessage("connection closed: " + status.String())
					return errStop
				}
				return err
			}
			out.PrintEnvelope(env)
			if env.Type == until {
				seenOnce.Do(func() { close(untilSeen) })
			}
		}
	})

	g.Go(func() error {
		for _, ch := range []chan struct{}{inputDone, untilSeen} {
			select {
			case <-ctx.Done():
				return nil
			case <-ch:
			}
		}
		return errStop
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errStop) {
		return err
	}
	return nil
}

// scanLines feeds non-blank, non-comment lines to a channel. The reader
// goroutine is not tied to the session because stdin reads cannot be
// interrupted.
func scanLines(in io.Reader) (<-chan string, func() error) {
	lines := make(chan string)
	var err error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines <- line
		}
		err = scanner.Err()
	}()
	return lines, func() error { return err }
}
