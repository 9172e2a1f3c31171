package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Stephensmetana/youtube-transcriptor/client"
)

func newTracksCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <video-id-or-url>",
		Short: "List the caption tracks available for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(opts)
			if err != nil {
				return err
			}
			c, err := buildClient(cfg, logger, opts)
			if err != nil {
				return err
			}

			tracks, err := c.ListTranscriptTracks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(tracks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No caption tracks available.")
				return nil
			}

			// Mark the track a fetch with the current preferences would pick.
			var selected client.TranscriptTrack
			if res, err := client.SelectTranscriptTrack(tracks, cfg.Selection.Languages); err == nil {
				selected = res.Track
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"", "ID", "Code", "Name", "Kind"})
			for _, track := range tracks {
				kind := "manual"
				if track.IsGenerated {
					kind = "auto-generated"
				}
				marker := ""
				if track == selected {
					marker = "*"
				}
				t.AppendRow(table.Row{marker, track.ID(), track.LanguageCode, track.LanguageName, kind})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
