package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/pkg/slides"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <presentation>",
	Short: "List the slides of a presentation",
	Long: `Inspect prints every slide with its id, name, placeholders, tables and
speaker notes. Slide names and ids are what Config.Templates refers to.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectFormat string

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", formatText, "Output format (text, json, yaml)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(nil); err != nil {
		return err
	}

	p, err := slides.OpenPresentationFile(args[0])
	if err != nil {
		return err
	}
	infos := slides.InspectPresentation(p)

	if inspectFormat != formatText {
		return writeStructured(cmd.OutOrStdout(), inspectFormat, infos)
	}
	writeSlideInfos(cmd.OutOrStdout(), infos)
	return nil
}

func writeSlideInfos(w io.Writer, infos []slides.SlideInfo) {
	for _, info := range infos {
		name := info.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "%d. %s  id=%d  %s\n", info.Index+1, name, info.ID, info.Part)
		if len(info.Placeholders) > 0 {
			fmt.Fprintf(w, "   placeholders: %s\n", strings.Join(info.Placeholders, " "))
		}
		for _, t := range info.Tables {
			fmt.Fprintf(w, "   table %q: %d x %d\n", t.Name, t.Rows, t.Columns)
		}
		if info.Notes != "" {
			fmt.Fprintf(w, "   notes: %s\n", strings.ReplaceAll(info.Notes, "\n", " / "))
		}
	}
}
