package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Stephensmetana/youtube-transcriptor/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the language codes and aliases accepted by --languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Code", "Language", "Also accepted"})
			for _, k := range language.All() {
				t.AppendRow(table.Row{k.Code, k.Name, strings.Join(k.Aliases, ", ")})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
