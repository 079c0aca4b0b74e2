package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentz26/ganttline/internal/audit"
	"github.com/fentz26/ganttline/internal/loader"
)

var convertCmd = &cobra.Command{
	Use:   "convert [source]",
	Short: "Convert a plan to CSV",
	Long: `Convert an XLSX, MS Project XML or snapshot file to a flat CSV table.
Without a source, the sheet configured under sheet: is fetched.`,
	Example: `  ganttline convert plan.xlsx --out plan.csv --indent
  ganttline convert --sheet-url "https://docs.google.com/spreadsheets/d/ID/export?format=csv"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

var (
	convertOut       string
	convertIndent    bool
	convertBOM       bool
	convertSheetURL  string
	convertNoHistory bool
)

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "CSV output path (default stdout)")
	convertCmd.Flags().BoolVar(&convertIndent, "indent", false, "Indent task names by depth")
	convertCmd.Flags().BoolVar(&convertBOM, "bom", true, "Start the file with a UTF-8 byte order mark")
	convertCmd.Flags().StringVar(&convertSheetURL, "sheet-url", "", "Fetch this CSV export instead of a local source")
	convertCmd.Flags().BoolVar(&convertNoHistory, "no-history", false, "Do not record this run in the history database")
}

func runConvert(cmd *cobra.Command, args []string) error {
	source := convertSheetURL
	if source == "" && len(args) > 0 {
		source = args[0]
	}
	records, source, err := loadPlan(cmd.Context(), source)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if convertOut != "" {
		f, err := os.Create(convertOut)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		w = f
	}

	opts := loader.CSVOptions{IndentNames: convertIndent, BOM: convertBOM}
	if err := loader.WriteCSV(w, records, opts); err != nil {
		recordDecision(convertNoHistory, audit.ActionConvert, audit.Inputs{Source: source}, audit.OutcomeFailed, "", err.Error())
		return err
	}
	recordDecision(convertNoHistory, audit.ActionConvert, audit.Inputs{Source: source}, audit.OutcomeOK, "",
		fmt.Sprintf("%d tasks", len(records)))

	if convertOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d tasks to %s\n", len(records), convertOut)
	}
	return nil
}
