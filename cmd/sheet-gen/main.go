// sheet-gen — инвентарный CSV → Shopify import CSV.
//
// Скачивает фото с Google Drive, описывает товар через vision-модель
// и собирает готовый для импорта CSV. Режим -interactive поднимает
// терминальный интерфейс с прогрессом.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/gdrive"
	"github.com/ilkoid/gemflow/pkg/sheetgen"
	"github.com/ilkoid/gemflow/pkg/tui"
	"github.com/ilkoid/gemflow/pkg/utils"
	"github.com/ilkoid/gemflow/pkg/vision"
)

var (
	configFlag      = flag.String("config", "", "Path to config.yaml (default: next to binary)")
	inputFlag       = flag.String("i", "", "Input inventory CSV")
	outputFlag      = flag.String("o", "shopify_import.csv", "Output Shopify CSV")
	interactiveFlag = flag.Bool("interactive", false, "Interactive terminal UI")
	modelFlag       = flag.String("model", "", "Vision model alias from config (default: models.default_vision)")
	verboseFlag     = flag.Bool("verbose", false, "Debug logging")
	timeoutFlag     = flag.Duration("timeout", 60*time.Minute, "Total run timeout")
)

func main() {
	flag.Parse()

	_ = godotenv.Load()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger init failed: %v\n", err)
	}
	defer utils.Close()
	utils.SetDebug(*verboseFlag)

	if err := run(); err != nil {
		utils.Error("sheet-gen failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgPath, err := config.LoadStrict(*configFlag)
	if err != nil {
		return err
	}
	utils.Info("Config loaded", "path", cfgPath)
	if cfg.App.Debug {
		utils.SetDebug(true)
	}

	modelDef, ok := cfg.GetVisionModel(*modelFlag)
	if !ok {
		return fmt.Errorf("vision model '%s' not found in config", *modelFlag)
	}

	gen := sheetgen.New(
		vision.NewClient(modelDef),
		gdrive.NewDownloader(60*time.Second, 3),
		cfg.Sheet,
		cfg.ImageProcessing,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	if *interactiveFlag {
		return runInteractive(ctx, gen)
	}

	if *inputFlag == "" {
		return fmt.Errorf("-i is required (or use -interactive)")
	}

	results, err := gen.Run(ctx, *inputFlag, *outputFlag)
	if err != nil {
		return err
	}

	printSummary(results)

	if results.FailedRows > 0 {
		return fmt.Errorf("%d row(s) failed", results.FailedRows)
	}
	return nil
}

// runInteractive — TUI-обертка над тем же пайплайном.
func runInteractive(ctx context.Context, gen *sheetgen.Generator) error {
	runner := tui.NewRunner(ctx, func(ctx context.Context, input, output string, onRow func(int, string)) (tui.Summary, error) {
		gen.OnRow = onRow
		results, err := gen.Run(ctx, input, output)
		if err != nil {
			return tui.Summary{}, err
		}
		return tui.Summary{
			TotalRows:   results.TotalRows,
			Processed:   results.Processed,
			Fallbacks:   results.Fallbacks,
			SkippedRows: results.SkippedRows,
			FailedRows:  results.FailedRows,
			Errors:      results.Errors,
		}, nil
	}, tui.Config{
		DefaultInput:  *inputFlag,
		DefaultOutput: *outputFlag,
	})

	summary, err := runner.Run()
	if err != nil {
		return err
	}
	if summary.FailedRows > 0 {
		return fmt.Errorf("%d row(s) failed", summary.FailedRows)
	}
	return nil
}

func printSummary(r *sheetgen.Results) {
	fmt.Printf("Rows total:   %d\nWritten:      %d\n", r.TotalRows, r.Processed)
	if r.Fallbacks > 0 {
		fmt.Printf("No AI:        %d\n", r.Fallbacks)
	}
	if r.SkippedRows > 0 {
		fmt.Printf("Skipped:      %d\n", r.SkippedRows)
	}
	if r.FailedRows > 0 {
		fmt.Printf("Failed:       %d\n", r.FailedRows)
	}
	for _, e := range r.Errors {
		fmt.Println("  - " + e)
	}
}
