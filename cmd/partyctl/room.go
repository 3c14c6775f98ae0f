package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ytparty/server/pkg/client"
	"github.com/ytparty/server/pkg/party"
)

func newCreateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a room and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			roomId, err := client.CreateRoom(ctx, v.GetString("server"))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), roomId)
			return nil
		},
	}
}

func newStateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the room's playback state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSocket(cmd, v, func(ctx context.Context, s *client.Socket) error {
				state, err := s.SyncState(ctx)
				if err != nil {
					return err
				}

				printState(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}
}

func printState(w io.Writer, state *party.State) {
	if state == nil {
		fmt.Fprintln(w, "nothing played yet")
		return
	}

	title := state.GetVideoId()
	if state.VideoMetadata != nil {
		title = fmt.Sprintf("%s by %s", state.VideoMetadata.Title, state.VideoMetadata.Author)
	}

	fmt.Fprintf(w, "%s %s/%s %s\n",
		state.PlayerState,
		client.FormatDuration(state.CurrentTime),
		client.FormatDuration(state.Duration),
		title,
	)
}

func newWatchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream the room's events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := connect(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			events := make(chan string, 16)
			s.OnStateReport(func(state *party.State) {
				data, _ := json.Marshal(state)
				events <- fmt.Sprintf("%s %s", party.EventStateReport, data)
			})
			s.OnCommand(func(command party.Command) {
				events <- fmt.Sprintf("%s %s %s", party.EventCommand, command.Name, command.Arg)
			})
			s.OnQueueModified(func(queue []party.VideoMetadata) {
				events <- fmt.Sprintf("%s %d videos", party.EventQueueModified, len(queue))
			})

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-s.Done():
					return client.ErrNotConnected
				case event := <-events:
					fmt.Fprintln(out, event)
				}
			}
		},
	}
}
