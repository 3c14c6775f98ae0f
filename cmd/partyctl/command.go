package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ytparty/server/pkg/client"
	"github.com/ytparty/server/pkg/party"
)

func newCommandCmd(v *viper.Viper) *cobra.Command {
	command := &cobra.Command{
		Use:   "command",
		Short: "Send a player command to everyone in the room",
	}

	send := func(name string, arg any) func(cmd *cobra.Command) error {
		return func(cmd *cobra.Command) error {
			return withSocket(cmd, v, func(_ context.Context, s *client.Socket) error {
				return s.SendCommand(name, arg)
			})
		}
	}

	command.AddCommand(
		&cobra.Command{
			Use:  party.CommandPlay,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return send(party.CommandPlay, nil)(cmd)
			},
		},
		&cobra.Command{
			Use:  party.CommandPause,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return send(party.CommandPause, nil)(cmd)
			},
		},
		&cobra.Command{
			Use:  party.CommandSeek + " <seconds>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				seconds, err := strconv.ParseFloat(args[0], 64)
				if err != nil || seconds < 0 {
					return fmt.Errorf("invalid seconds %q", args[0])
				}

				return send(party.CommandSeek, seconds)(cmd)
			},
		},
	)

	return command
}
