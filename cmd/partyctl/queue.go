package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ytparty/server/pkg/client"
	"github.com/ytparty/server/pkg/ytvideodata"
)

func newQueueCmd(v *viper.Viper) *cobra.Command {
	queue := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and edit the room's video queue",
	}

	queue.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the queued videos",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withSocket(cmd, v, func(ctx context.Context, s *client.Socket) error {
					videos, err := s.SyncQueue(ctx)
					if err != nil {
						return err
					}

					out := cmd.OutOrStdout()
					if len(videos) == 0 {
						fmt.Fprintln(out, "queue is empty")
					}
					for i, video := range videos {
						fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i, video.Id, video.Title, video.Author)
					}

					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <video-id-or-url>",
			Short: "Append a video to the queue",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				videoId, err := ytvideodata.ParseVideoId(args[0])
				if err != nil {
					return err
				}

				return withSocket(cmd, v, func(ctx context.Context, s *client.Socket) error {
					return s.AddVideo(ctx, videoId)
				})
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove the video at index",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", args[0], err)
				}

				return withSocket(cmd, v, func(ctx context.Context, s *client.Socket) error {
					return s.RemoveVideo(ctx, index)
				})
			},
		},
		&cobra.Command{
			Use:   "move <index> <new-position>",
			Short: "Move the video at index to a new position",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", args[0], err)
				}
				newPosition, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid position %q: %w", args[1], err)
				}

				return withSocket(cmd, v, func(ctx context.Context, s *client.Socket) error {
					return s.MoveVideo(ctx, index, newPosition)
				})
			},
		},
	)

	return queue
}

func newPreviewCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <video-id-or-url>",
		Short: "Show a video's metadata without queueing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoId, err := ytvideodata.ParseVideoId(args[0])
			if err != nil {
				return err
			}

			return withSocket(cmd, v, func(ctx context.Context, s *client.Socket) error {
				metadata, err := s.DownloadVideoMetadata(ctx, videoId)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "id:        %s\n", metadata.Id)
				fmt.Fprintf(out, "title:     %s\n", metadata.Title)
				fmt.Fprintf(out, "author:    %s\n", metadata.Author)
				fmt.Fprintf(out, "thumbnail: %s\n", metadata.Thumbnail)

				return nil
			})
		},
	}
}
