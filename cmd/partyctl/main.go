package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ytparty/server/pkg/client"
)

const (
	envPrefix      = "PARTYCTL"
	requestTimeout = 10 * time.Second
)

var errRoomRequired = errors.New("a room id is required, pass --room or set PARTYCTL_ROOM")

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "partyctl",
		Short:         "Control a watch party from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8080", "server base url")
	flags.String("room", "", "room id")
	flags.Bool("verbose", false, "log protocol traffic to stderr")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.BindPFlags(flags)

	root.AddCommand(
		newCreateCmd(v),
		newStateCmd(v),
		newWatchCmd(v),
		newQueueCmd(v),
		newPreviewCmd(v),
		newCommandCmd(v),
	)

	return root
}

func newLogger(v *viper.Viper) *slog.Logger {
	level := slog.LevelWarn
	if v.GetBool("verbose") {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// connect dials the room named by --room.
func connect(ctx context.Context, v *viper.Viper) (*client.Socket, error) {
	roomId := v.GetString("room")
	if roomId == "" {
		return nil, errRoomRequired
	}

	dialCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	return client.Dial(dialCtx, v.GetString("server"), roomId, newLogger(v))
}

// withSocket runs fn against a connected socket with a bounded context.
func withSocket(cmd *cobra.Command, v *viper.Viper, fn func(ctx context.Context, s *client.Socket) error) error {
	s, err := connect(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	return fn(ctx, s)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
