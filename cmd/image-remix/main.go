// image-remix — генерация вариантов товарных фото через image API.
//
// Берет изображения категории из входной папки, для каждого генерирует
// N вариантов по промптам из библиотеки. Имя файла — артикул, он
// наносится на сгенерированное изображение.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ilkoid/gemflow/pkg/config"
	"github.com/ilkoid/gemflow/pkg/prompts"
	"github.com/ilkoid/gemflow/pkg/remix"
	"github.com/ilkoid/gemflow/pkg/utils"
	"github.com/ilkoid/gemflow/pkg/vision"
)

var (
	configFlag  = flag.String("config", "", "Path to config.yaml (default: next to binary)")
	inputFlag   = flag.String("i", "", "Input folder with source images")
	outputFlag  = flag.String("o", "remixed", "Output folder")
	catFlag     = flag.String("c", "", "Product category (key in prompts library)")
	countFlag   = flag.Int("n", 3, "Variants per source image")
	seedFlag    = flag.Int64("seed", 0, "Random seed for prompt selection (0 = time-based)")
	modelFlag   = flag.String("model", "", "Image model alias from config (default: models.default_image)")
	verboseFlag = flag.Bool("verbose", false, "Debug logging")
	timeoutFlag = flag.Duration("timeout", 60*time.Minute, "Total run timeout")
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
		utils.Error("image-remix failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *inputFlag == "" || *catFlag == "" {
		return fmt.Errorf("-i and -c are required")
	}

	cfg, cfgPath, err := config.LoadStrict(*configFlag)
	if err != nil {
		return err
	}
	utils.Info("Config loaded", "path", cfgPath)
	if cfg.App.Debug {
		utils.SetDebug(true)
	}

	modelDef, ok := cfg.GetImageModel(*modelFlag)
	if !ok {
		return fmt.Errorf("image model '%s' not found in config", *modelFlag)
	}

	lib, err := prompts.Load(cfg.App.PromptsFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	results, err := remix.Run(ctx, vision.NewClient(modelDef), lib, remix.Options{
		InputDir:  *inputFlag,
		OutputDir: *outputFlag,
		Category:  *catFlag,
		Count:     *countFlag,
		Seed:      *seedFlag,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Source files: %d\nGenerated:    %d\nFailed:       %d\n",
		results.TotalFiles, results.Generated, results.Failed)
	for _, e := range results.Errors {
		fmt.Println("  - " + e)
	}

	if results.Failed > 0 {
		return fmt.Errorf("%d generation(s) failed", results.Failed)
	}
	return nil
}
