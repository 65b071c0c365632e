package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang-export-dashboard/cmd/exportdash/config"
	"golang-export-dashboard/internal/pipeline"
	"golang-export-dashboard/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the generate command
var (
	inputFile     string
	outputFile    string
	province      string
	topN          int
	chartTitle    string
	summaryFormat string
	summaryFile   string
	showProgress  bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dashboard document from a trade export report",
	Long: `Generate reads a monthly merchandise trade report (CSV), keeps the
rows for the configured province, classifies commodities into product
families, ranks the top exports by total value, and writes the stacked-bar
chart document as JSON.

Examples:
  # Basic generation
  exportdash generate --input report.csv --output export_data.json

  # Different province and a tighter top list
  exportdash generate --input report.csv --province Alberta --top-n 5

  # Print a JSON run summary instead of the console table
  exportdash generate --input report.csv --summary-format json

  # Write the run summary to a file, with progress indicators
  exportdash generate --input report.csv --summary-file summary.txt --progress`,

	PreRunE: validateGenerateFlags,
	RunE:    runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	// Required flags
	generateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to the trade report CSV file (required)")

	// Output flags
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "export_data.json", "chart document output path")
	generateCmd.Flags().StringVar(&summaryFormat, "summary-format", "console", "run summary format: console, json")
	generateCmd.Flags().StringVar(&summaryFile, "summary-file", "", "run summary output path (default: stdout)")

	// Pipeline configuration flags
	generateCmd.Flags().StringVarP(&province, "province", "p", "", "province filter (default: Saskatchewan)")
	generateCmd.Flags().IntVarP(&topN, "top-n", "n", 10, "number of commodities to rank")
	generateCmd.Flags().StringVar(&chartTitle, "title", "", "chart title override")

	// UI flags
	generateCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	// Mark required flags
	generateCmd.MarkFlagRequired("input")

	// Bind flags to viper
	viper.BindPFlag("input", generateCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", generateCmd.Flags().Lookup("output"))
	viper.BindPFlag("province", generateCmd.Flags().Lookup("province"))
	viper.BindPFlag("top-n", generateCmd.Flags().Lookup("top-n"))
	viper.BindPFlag("title", generateCmd.Flags().Lookup("title"))
	viper.BindPFlag("summary-format", generateCmd.Flags().Lookup("summary-format"))
	viper.BindPFlag("summary-file", generateCmd.Flags().Lookup("summary-file"))
	viper.BindPFlag("progress", generateCmd.Flags().Lookup("progress"))
}

func validateGenerateFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFile = viper.GetString("input")
	outputFile = viper.GetString("output")
	province = viper.GetString("province")
	topN = viper.GetInt("top-n")
	chartTitle = viper.GetString("title")
	summaryFormat = viper.GetString("summary-format")
	summaryFile = viper.GetString("summary-file")
	showProgress = viper.GetBool("progress")

	// Validate required flags
	if inputFile == "" {
		return fmt.Errorf("input is required")
	}

	if err := validateFileExists(inputFile, "trade report file"); err != nil {
		return err
	}

	// Validate summary format
	if !reporter.OutputFormat(summaryFormat).IsValid() {
		return fmt.Errorf("invalid summary format '%s'. Valid formats: console, json", summaryFormat)
	}

	if topN <= 0 {
		return fmt.Errorf("top-n must be positive, got %d", topN)
	}

	// Validate output directories exist
	for _, path := range []string{outputFile, summaryFile} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting dashboard generation...\n")
		fmt.Fprintf(os.Stderr, "Input file: %s\n", inputFile)
		fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		if province != "" {
			fmt.Fprintf(os.Stderr, "Province filter: %s\n", province)
		}
	}

	// Create configurations
	parserConfig, err := config.CreateParserConfig(province)
	if err != nil {
		return fmt.Errorf("failed to create parser config: %w", err)
	}
	pipelineConfig := config.CreatePipelineConfig(parserConfig, topN, chartTitle)

	// Create the pipeline
	run, err := pipeline.New(pipelineConfig)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	if showProgress {
		run.AddProgressCallback(func(progress *pipeline.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s (%.1f%% complete)",
				progress.StagesCompleted, progress.TotalStages,
				progress.Stage, progress.PercentComplete)
		})
		fmt.Fprintf(os.Stderr, "Processing trade report...\n")
	}

	result, err := run.Run(ctx, inputFile)
	if err != nil {
		// Pipeline failures carry their own category and exit code
		os.Exit(NewCLIErrorHandler().HandleError(err))
	}
	if showProgress {
		fmt.Fprintf(os.Stderr, "\n")
	}

	// Write the chart document
	chartOut, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer chartOut.Close()

	if err := result.Figure.WriteJSON(chartOut); err != nil {
		return fmt.Errorf("failed to write chart document: %w", err)
	}

	// Generate the run summary
	reportConfig := config.CreateReportConfig(summaryFormat)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	var summaryOut *os.File
	if summaryFile != "" {
		summaryOut, err = os.Create(summaryFile)
		if err != nil {
			return fmt.Errorf("failed to create summary file: %w", err)
		}
		defer summaryOut.Close()
	} else {
		summaryOut = os.Stdout
	}

	if err := reportGenerator.GenerateReport(result, summaryOut); err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	// Show completion message
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nDashboard generation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Classified %d records (%d dropped as unclassifiable).\n",
			result.RecordsClassified, result.RecordsDropped)
		fmt.Fprintf(os.Stderr, "Wrote %d traces over %d months to %s.\n",
			result.TraceCount, result.MonthCount, outputFile)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Duration)
	}

	return nil
}
