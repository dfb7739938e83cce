package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/pkg/slides"
)

var validateCmd = &cobra.Command{
	Use:   "validate <template>",
	Short: "Check a template, and optionally a record file",
	Long: `Validate checks that the template has a slide for every slide kind,
that each carries the placeholders its records fill, and that the table
slide has a table. With --records the record file is decoded and checked
as well.

The command fails when errors are found; warnings are only reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var (
	validateRecords string
	validateFormat  string
)

func init() {
	validateCmd.Flags().StringVarP(&validateRecords, "records", "r", "", "Record file to check as well")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", formatText, "Output format (text, json, yaml)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(nil)
	if err != nil {
		return err
	}

	p, err := slides.OpenPresentationFile(args[0])
	if err != nil {
		return err
	}
	result := slides.ValidateTemplate(p, config.TemplateSet())

	var recordsErr error
	if validateRecords != "" {
		records, err := slides.LoadRecordsFile(validateRecords)
		if err != nil {
			recordsErr = err
		} else {
			recordsErr = slides.ValidateRecords(records)
		}
	}

	out := cmd.OutOrStdout()
	if validateFormat != formatText {
		report := struct {
			Template slides.TemplateValidationResult `json:"template" yaml:"template"`
			Records  string                          `json:"records,omitempty" yaml:"records,omitempty"`
		}{Template: result}
		if recordsErr != nil {
			report.Records = recordsErr.Error()
		}
		if err := writeStructured(out, validateFormat, report); err != nil {
			return err
		}
	} else {
		writeValidation(out, result)
		if validateRecords != "" {
			if recordsErr != nil {
				fmt.Fprintf(out, "records: %v\n", recordsErr)
			} else {
				fmt.Fprintf(out, "records: ok\n")
			}
		}
	}

	if !result.Summary.Valid {
		return fmt.Errorf("template has %d errors", result.Summary.ErrorCount)
	}
	return recordsErr
}

func writeValidation(w io.Writer, result slides.TemplateValidationResult) {
	for _, info := range result.Slides {
		if info.Found {
			fmt.Fprintf(w, "%-8s -> %s (id %d)\n", info.Kind, info.Ref, info.SlideID)
		} else {
			fmt.Fprintf(w, "%-8s -> %s (missing)\n", info.Kind, info.Ref)
		}
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "%s %s: %s\n", issue.Severity, issue.Code, issue.Message)
	}
	fmt.Fprintf(w, "%d errors, %d warnings\n", result.Summary.ErrorCount, result.Summary.WarningCount)
}
