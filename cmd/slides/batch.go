package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/pkg/slides"
)

var batchCmd = &cobra.Command{
	Use:   "batch <pattern>...",
	Short: "Generate one deck per record file",
	Long: `Batch generates a deck for every record file matching the given glob
patterns. Patterns support ** for recursive matching. Each deck is written
to the output directory, named after its record file.

All files are attempted; the errors of failed files are reported together.`,
	Example: `  slides batch -t template.pptx -o out "decks/**/*.yaml"
  slides batch -t template.pptx -o out "q3/*.json" "q4/*.json"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var (
	batchFlags     generationFlags
	batchTemplate  string
	batchOutputDir string
)

func init() {
	batchCmd.Flags().StringVarP(&batchTemplate, "template", "t", "", "Template presentation (required)")
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", ".", "Directory for the generated decks")
	batchFlags.register(batchCmd)
	batchCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(batchCmd)
}

// recordFiles expands the glob patterns into a sorted list of distinct
// record files.
func recordFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// deckPath names the output deck of a record file.
func deckPath(outputDir, recordFile string) string {
	base := filepath.Base(recordFile)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".pptx")
}

func runBatch(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(batchFlags.apply(cmd))
	if err != nil {
		return err
	}

	files, err := recordFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no record files match %s", strings.Join(args, ", "))
	}

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	engine := slides.NewWithConfig(config)
	defer engine.Close()

	logger := slides.GetLogger()
	errs := slides.NewMultiError()
	outputs := make(map[string]string)
	for _, file := range files {
		out := deckPath(batchOutputDir, file)
		if prev, ok := outputs[out]; ok {
			errs.Add(fmt.Errorf("%s: output %s is already written for %s", file, out, prev))
			continue
		}
		outputs[out] = file

		job := generateJob{engine: engine, template: batchTemplate, records: file, output: out}
		if err := job.run(cmd); err != nil {
			logger.WithField("file", file).Error("Generation failed: %v", err)
			errs.Add(fmt.Errorf("%s: %w", file, err))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d of %d decks\n", len(files)-errs.Len(), len(files))
	return errs.Err()
}
