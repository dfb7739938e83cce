package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/pkg/slides"
	"github.com/benjaminschreck/go-slides/pkg/slides/render"
)

var styleCmd = &cobra.Command{
	Use:   "style [text]",
	Short: "Show how markup in a text is rendered",
	Long: `Style removes **bold** and [[important]] markers from the text and
prints the plain text followed by the styled ranges. Offsets count
characters, not bytes. Without an argument the text is read from stdin.`,
	Example: `  slides style "Revenue **up** and [[churn]] down"`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runStyle,
}

var styleFormat string

func init() {
	styleCmd.Flags().StringVarP(&styleFormat, "format", "f", formatText, "Output format (text, json, yaml)")
	rootCmd.AddCommand(styleCmd)
}

// styledText is the machine-readable result of the style command.
type styledText struct {
	Text   string       `json:"text" yaml:"text"`
	Ranges []styleRange `json:"ranges" yaml:"ranges"`
}

type styleRange struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Kind  string `json:"kind" yaml:"kind"`
	Text  string `json:"text" yaml:"text"`
}

func styleOf(text string) styledText {
	plain, ranges := slides.StyleText(text)
	runes := []rune(plain)

	out := styledText{Text: plain, Ranges: []styleRange{}}
	for _, r := range ranges {
		out.Ranges = append(out.Ranges, styleRange{
			Start: r.Start,
			End:   r.End,
			Kind:  r.Kind.String(),
			Text:  string(runes[r.Start:r.End]),
		})
	}
	return out
}

func runStyle(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	result := styleOf(text)
	out := cmd.OutOrStdout()
	if styleFormat != formatText {
		return writeStructured(out, styleFormat, result)
	}

	fmt.Fprintln(out, result.Text)
	for _, r := range result.Ranges {
		fmt.Fprintf(out, "%-9s %d-%d %q\n", r.Kind, r.Start, r.End, r.Text)
	}
	if !render.HasMarkup(text) {
		fmt.Fprintln(cmd.ErrOrStderr(), "no markup found")
	}
	return nil
}
