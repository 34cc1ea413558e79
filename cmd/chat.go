package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/autoreply/internal/channels/console"
	"github.com/nextlevelbuilder/autoreply/internal/tracing"
)

// chatDrainDelay lets replies to the last input line go out after EOF.
const chatDrainDelay = 300 * time.Millisecond

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot from the terminal (one message per line)",
		Long: `Reads messages from stdin and prints replies to stdout.

Every line is addressed to the bot, and the console sender is an admin unless
permissions.trusted_channels says otherwise. Type "\n" inside a line for a
newline in a reply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
	}
}

func runChat() error {
	cfg := mustLoadConfig()
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup(ctx, cfg.Telemetry, Version)
	defer flushTracing(shutdownTracing)

	rt := newPipeline(ctx, cfg, mustOpenKeywordStore(ctx, cfg))
	defer rt.stop()

	con := console.New(os.Stdin, os.Stdout, rt.bus)
	rt.channels.Register(con)
	if err := rt.start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "autoreply chat (%d keywords, %s). Ctrl-D to quit.\n", rt.index.Len(), storeLocation(cfg))

	select {
	case <-ctx.Done():
	case <-con.Done():
		slog.Debug("console input closed")
		time.Sleep(chatDrainDelay)
	}
	return nil
}
