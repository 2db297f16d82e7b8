package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wxmohd/walaa-dev/internal/terminal"
)

func newTerminalCmd() *cobra.Command {
	var typeInterval, pause time.Duration
	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Play the hero terminal animation in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playTerminal(cmd.Context(), cmd.OutOrStdout(), terminal.DefaultScript, typeInterval, pause)
		},
	}
	cmd.Flags().DurationVar(&typeInterval, "type-interval", terminal.DefaultTypeInterval, "delay between typed characters")
	cmd.Flags().DurationVar(&pause, "pause", terminal.DefaultPauseDuration, "pause after each command output")
	return cmd
}

// playTerminal writes the animation to w as it types and returns once the
// script is finished or ctx ends.
func playTerminal(ctx context.Context, w io.Writer, script terminal.Script, typeInterval, pause time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var written int
	var werr error
	runner := terminal.NewRunner(script,
		terminal.WithTypeInterval(typeInterval),
		terminal.WithPauseDuration(pause),
		terminal.WithRender(func(s terminal.State) {
			if werr != nil || len(s.Text) <= written {
				return
			}
			_, werr = io.WriteString(w, s.Text[written:])
			written = len(s.Text)
		}),
	)
	runner.Visible()

	finished := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(finished)
	}()

	select {
	case <-runner.Done():
	case <-ctx.Done():
	}
	cancel()
	<-finished

	if werr != nil {
		return werr
	}
	if !strings.HasSuffix(runner.State().Text, "\n") {
		_, werr = fmt.Fprintln(w)
	}
	return werr
}
