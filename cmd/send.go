package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/mviewer/pkg/protocol"
	"github.com/spf13/cobra"
)

// NewSendCmd creates the `send` command.
func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <verb> [args...]",
		Short: "Send a single command to the renderer",
		Long: `Sends one command line over the renderer's WebSocket and optionally prints
the directives that come back.

Verbs: ` + strings.Join(protocol.Verbs(), ", ") + `

Examples:
  mviewer send zoomIn
  mviewer send resize 1200 900
  mviewer send zoom 10 210 100 300 --listen 2s`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSendE,
	}

	cmd.Flags().Duration("listen", 0, "Print directives received for this long after sending")
	cmd.Flags().Duration("timeout", 10*time.Second, "Give up if the renderer cannot be reached in time")
	return cmd
}

func runSendE(cmd *cobra.Command, args []string) error {
	command, err := protocol.ParseCommand(strings.Join(args, " "))
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	listen, _ := cmd.Flags().GetDuration("listen")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	out := cmd.OutOrStdout()
	directives := make(chan string, 64)
	if listen > 0 {
		s.client.OnMessage(func(message string) {
			select {
			case directives <- message:
			default:
			}
		})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	s.connect(cmd.Context())

	if err := s.store.Send(ctx, command); err != nil {
		return err
	}
	s.logger.WithField("command", command.Verb).Debug("Command sent")

	if listen <= 0 {
		return nil
	}
	deadline := time.After(listen)
	for {
		select {
		case d := <-directives:
			fmt.Fprintln(out, d)
		case <-s.client.Done():
			return nil
		case <-deadline:
			return nil
		}
	}
}
