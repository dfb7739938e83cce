package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/pkg/slides"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck from a template and a record file",
	Long: `Generate copies one template slide per record into a new deck.

Records are read from JSON (comments allowed) or YAML. With --debug the
record file is ignored and a sample deck using every slide kind is
generated. With --watch the deck is regenerated whenever the template or
the record file changes.`,
	Example: `  slides generate -t template.pptx -r deck.yaml -o deck.pptx
  slides generate -t template.pptx --debug -o sample.pptx
  slides generate -t template.pptx -r deck.json -o deck.pptx --watch`,
	RunE: runGenerate,
}

// generationFlags are the config overrides shared by generate and batch.
type generationFlags struct {
	keepExisting    bool
	strict          bool
	skipMissing     bool
	debug           bool
	importantColor  string
	columnResize    string
	styleTableCells bool
}

func (f *generationFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.keepExisting, "keep-existing", false, "Keep the template's slides in front of the generated ones")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail on record validation issues")
	cmd.Flags().BoolVar(&f.skipMissing, "skip-missing", false, "Skip records whose template slide is missing")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Ignore the records and generate the sample deck")
	cmd.Flags().StringVar(&f.importantColor, "important-color", "", "CSS color of [[important]] text")
	cmd.Flags().StringVar(&f.columnResize, "column-resize", "", "Column widths after growing a table (fixed, redistribute, proportional)")
	cmd.Flags().BoolVar(&f.styleTableCells, "style-table-cells", false, "Render markup inside table cells")
}

// apply copies the flags the user set onto config.
func (f *generationFlags) apply(cmd *cobra.Command) func(*slides.Config) {
	return func(config *slides.Config) {
		flags := cmd.Flags()
		if flags.Changed("keep-existing") {
			config.DeleteExistingSlides = !f.keepExisting
		}
		if flags.Changed("strict") {
			config.StrictMode = f.strict
		}
		if flags.Changed("skip-missing") {
			config.SkipMissingTemplates = f.skipMissing
		}
		if flags.Changed("debug") {
			config.Debug = f.debug
		}
		if f.importantColor != "" {
			config.ImportantColor = f.importantColor
		}
		if f.columnResize != "" {
			config.ColumnResize = f.columnResize
		}
		if flags.Changed("style-table-cells") {
			config.StyleTableCells = f.styleTableCells
		}
	}
}

var (
	generateFlags    generationFlags
	templatePathFlag string
	recordsPathFlag  string
	outputFileFlag   string
	watchFlag        bool
)

func init() {
	generateCmd.Flags().StringVarP(&templatePathFlag, "template", "t", "", "Template presentation (required)")
	generateCmd.Flags().StringVarP(&recordsPathFlag, "records", "r", "", "Record file (JSON or YAML)")
	generateCmd.Flags().StringVarP(&outputFileFlag, "output", "o", "output.pptx", "Output presentation")
	generateCmd.Flags().BoolVar(&watchFlag, "watch", false, "Regenerate when the template or records change")
	generateFlags.register(generateCmd)
	generateCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(generateFlags.apply(cmd))
	if err != nil {
		return err
	}
	if recordsPathFlag == "" && !config.Debug {
		return fmt.Errorf("--records is required unless --debug is set")
	}

	engine := slides.NewWithConfig(config)
	defer engine.Close()

	job := generateJob{
		engine:   engine,
		template: templatePathFlag,
		records:  recordsPathFlag,
		output:   outputFileFlag,
	}

	if !watchFlag {
		return job.run(cmd)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watch(ctx, cmd, job)
}

// generateJob is one template + record file -> deck run.
type generateJob struct {
	engine   *slides.Engine
	template string
	records  string
	output   string
}

func (j generateJob) run(cmd *cobra.Command) error {
	var records []slides.Record
	if j.records != "" {
		var err error
		records, err = slides.LoadRecordsFile(j.records)
		if err != nil {
			return err
		}
	}

	if err := j.engine.GenerateFile(j.template, records, j.output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", j.output)
	return nil
}
