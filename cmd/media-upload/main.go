// media-upload — загрузка товарных медиа в Shopify.
//
// Источник — локальная папка или префикс в S3. Идентификатор товара
// извлекается из имени файла. Распространяется вместе с config.yaml
// в одной директории.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/journal"
	"github.com/ilkoid/gemflow/pkg/s3source"
	"github.com/ilkoid/gemflow/pkg/shopify"
	"github.com/ilkoid/gemflow/pkg/uploader"
	"github.com/ilkoid/gemflow/pkg/utils"
)

var (
	configFlag  = flag.String("config", "", "Path to config.yaml (default: next to binary)")
	folderFlag  = flag.String("folder", "", "Local folder with media files")
	s3Flag      = flag.String("s3-prefix", "", "S3 prefix with media files (instead of -folder)")
	dryRunFlag  = flag.Bool("dry-run", false, "Validate and resolve products, skip actual upload")
	forceFlag   = flag.Bool("force", false, "Re-upload files already recorded in the journal")
	verboseFlag = flag.Bool("verbose", false, "Debug logging")
	timeoutFlag = flag.Duration("timeout", 30*time.Minute, "Total run timeout")
)

func main() {
	flag.Parse()

	// .env рядом с бинарником опционален
	_ = godotenv.Load()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger init failed: %v\n", err)
	}
	defer utils.Close()
	utils.SetDebug(*verboseFlag)

	if err := run(); err != nil {
		utils.Error("media-upload failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if (*folderFlag == "") == (*s3Flag == "") {
		return fmt.Errorf("exactly one of -folder or -s3-prefix is required")
	}

	cfg, cfgPath, err := config.LoadStrict(*configFlag)
	if err != nil {
		return err
	}
	utils.Info("Config loaded", "path", cfgPath)
	if cfg.App.Debug {
		utils.SetDebug(true)
	}

	if err := cfg.ValidateShopify(); err != nil {
		return err
	}

	client, err := shopify.NewFromConfig(cfg.Shopify)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	// Проверяем доступ до начала работы: падать лучше сразу
	shop, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("shopify ping: %w", err)
	}
	utils.Info("Connected to shop", "name", shop.Name)

	var j *journal.Journal
	if cfg.Journal.Path != "" {
		j, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
	}

	up := uploader.New(client, cfg.Media, j)
	opts := uploader.Options{DryRun: *dryRunFlag, Force: *forceFlag}

	var results *uploader.Results
	if *folderFlag != "" {
		results, err = up.ProcessFolder(ctx, *folderFlag, opts)
	} else {
		if err := cfg.ValidateS3(); err != nil {
			return err
		}
		var src *s3source.Client
		src, err = s3source.New(cfg.S3)
		if err != nil {
			return err
		}
		results, err = up.ProcessS3(ctx, src, *s3Flag, opts)
	}
	if err != nil {
		return err
	}

	printSummary(results, *dryRunFlag)

	if results.FailedUploads > 0 {
		return fmt.Errorf("%d upload(s) failed", results.FailedUploads)
	}
	return nil
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func printSummary(r *uploader.Results, dryRun bool) {
	title := "Upload summary"
	if dryRun {
		title = "Upload summary (dry run)"
	}

	lines := fmt.Sprintf("%s\n\nFiles found:    %d\nValid media:    %d\n%s",
		title,
		r.TotalFiles,
		r.ValidMedia,
		okStyle.Render(fmt.Sprintf("Uploaded:       %d", r.SuccessfulUploads)),
	)
	if r.SkippedFiles > 0 {
		lines += "\n" + warnStyle.Render(fmt.Sprintf("Skipped:        %d", r.SkippedFiles))
	}
	if r.FailedUploads > 0 {
		lines += "\n" + errStyle.Render(fmt.Sprintf("Failed:         %d", r.FailedUploads))
		for _, e := range r.Errors {
			lines += "\n" + errStyle.Render("  - "+e)
		}
	}

	fmt.Println(boxStyle.Render(lines))
}
