package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/mtessier/ircc-rag/pkg/chunker"
	cfgPkg "github.com/mtessier/ircc-rag/pkg/config"
	"github.com/mtessier/ircc-rag/pkg/extractor"
	"github.com/mtessier/ircc-rag/pkg/ingest"
	"github.com/mtessier/ircc-rag/pkg/llm"
	"github.com/mtessier/ircc-rag/pkg/sources"
	"github.com/mtessier/ircc-rag/pkg/store"
)

func main() {
	var configPath, sourcesPath, dbURL, docType, program string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&sourcesPath, "sources", "sources.txt", "Path to the URL list")
	flag.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (overrides config)")
	flag.StringVar(&docType, "doc-type", "IRCC", "doc_type stored on each source")
	flag.StringVar(&program, "program", "", "program tag stored on each source")
	flag.Parse()

	godotenv.Load()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if dbURL != "" {
		config.Database.URL = dbURL
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	if err := run(config, sourcesPath, docType, program); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config, sourcesPath, docType, program string) error {
	ctx := context.Background()

	urls, err := sources.Load(sourcesPath)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("%s is empty", sourcesPath)
	}

	ext := extractor.NewWithConfig(extractor.ExtractorConfig{
		Timeout:   time.Duration(config.Extractor.TimeoutSeconds) * time.Second,
		RateLimit: config.Extractor.RateLimit,
		UserAgent: config.Extractor.UserAgent,
	})

	chk, err := chunker.NewWithConfig(chunker.ChunkerConfig{
		MaxTokens:     config.Chunker.MaxTokens,
		OverlapTokens: config.Chunker.OverlapTokens,
		MinChars:      config.Chunker.MinChars,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chunker: %v", err)
	}

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   config.LLM.EmbeddingModel,
		BaseURL: config.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	vectorStore, err := store.NewWithConfig(ctx, store.StoreConfig{
		ConnString: config.Database.URL,
		VectorDim:  config.Database.VectorDim,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	if err := vectorStore.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %v", err)
	}

	pipeline := ingest.New(ingest.Config{
		DocType:   docType,
		Program:   program,
		BatchSize: config.Database.BatchSize,
	}, ext, chk, embedder, vectorStore, nil)

	color.Blue("\nIngesting %d sources from %s\n", len(urls), sourcesPath)
	bar := getProgressBar(len(urls), " Ingesting sources...")

	var changed, unchanged, failed int
	var inserted int64
	pipeline.Run(ctx, urls, func(res ingest.Result) {
		bar.Add(1)
		switch {
		case res.Err != nil:
			failed++
			color.Red("\n✗ %s: %v", res.URL, res.Err)
		case res.Changed:
			changed++
			inserted += res.Inserted
		default:
			unchanged++
		}
	})
	bar.Finish()

	color.Green("\n✓ Done: %d updated, %d unchanged, %d failed, %d chunks inserted\n",
		changed, unchanged, failed, inserted)
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
