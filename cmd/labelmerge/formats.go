package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/labelmerge/internal/core"
)

// formatView is one registry entry as printed by the CLI.
type formatView struct {
	ID             string      `json:"id" yaml:"id"`
	Name           string      `json:"name" yaml:"name"`
	Description    string      `json:"description" yaml:"description"`
	Layout         string      `json:"layout" yaml:"layout"`
	LabelsPerSheet int         `json:"labelsPerSheet" yaml:"labelsPerSheet"`
	LabelSize      core.Size   `json:"labelSize" yaml:"labelSize"`
	PageMargins    core.Edges  `json:"pageMargins" yaml:"pageMargins"`
	Gutter         core.Gutter `json:"gutter" yaml:"gutter"`
	Default        bool        `json:"default,omitempty" yaml:"default,omitempty"`
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported Avery label formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printOutput(cmd.OutOrStdout(), formatViews(), writeFormatsText)
	},
}

func formatViews() []formatView {
	formats := core.Formats()
	views := make([]formatView, len(formats))
	for i, g := range formats {
		views[i] = formatView{
			ID:             g.ID,
			Name:           g.Name,
			Description:    g.Description,
			Layout:         fmt.Sprintf("%d x %d", g.Cols, g.Rows),
			LabelsPerSheet: g.LabelsPerSheet,
			LabelSize:      g.LabelSize,
			PageMargins:    g.PageMargin,
			Gutter:         g.LabelMargin,
			Default:        g.ID == core.DefaultFormatID,
		}
	}
	return views
}

func writeFormatsText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLAYOUT\tPER SHEET\tLABEL SIZE\tMM")
	for _, v := range formatViews() {
		id := v.ID
		if v.Default {
			id += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s x %s\t%.1f x %.1f\n",
			id, v.Name, v.Layout, v.LabelsPerSheet, v.LabelSize.Width, v.LabelSize.Height,
			v.LabelSize.Width.Millimeters(), v.LabelSize.Height.Millimeters())
	}
	return tw.Flush()
}
