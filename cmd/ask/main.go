package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	cfgPkg "github.com/mtessier/ircc-rag/pkg/config"
	"github.com/mtessier/ircc-rag/pkg/llm"
	"github.com/mtessier/ircc-rag/pkg/retriever"
	"github.com/mtessier/ircc-rag/pkg/store"
)

func main() {
	var configPath, dbURL string
	var topK int
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (overrides config)")
	flag.IntVar(&topK, "top-k", 0, "Number of chunks passed to the model")
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

	if err := run(config, topK); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config, topK int) error {
	ctx := context.Background()

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   config.LLM.EmbeddingModel,
		BaseURL: config.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: config.LLM.Temperature,
		BaseURL:     config.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	vectorStore, err := store.NewWithConfig(ctx, store.StoreConfig{
		ConnString: config.Database.URL,
		VectorDim:  config.Database.VectorDim,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	r := retriever.NewWithConfig(retriever.RetrieverConfig{
		FetchK: config.Database.FetchK,
		TopK:   config.Database.TopK,
	}, embedder, vectorStore)

	color.Cyan("\nAsk about IRCC forms and guides (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}

		searchSpinner := getSpinner(" Searching sources...")
		rows, err := r.Retrieve(ctx, question, topK)
		searchSpinner.Finish()
		if err != nil {
			color.Red("Error retrieving sources: %v\n", err)
			continue
		}

		if len(rows) == 0 {
			color.Yellow("\nNo relevant sources found.\n")
			continue
		}

		color.Blue("\n--- Retrieved sources ---")
		for _, row := range rows {
			fmt.Printf("- %s  |  %s\n", row.URL, row.Section)
		}

		answerSpinner := getSpinner(" Generating answer...")
		answer, err := chatEngine.Answer(ctx, question, retriever.BuildContext(rows))
		answerSpinner.Finish()
		if err != nil {
			color.Red("Error: %v\n", err)
			continue
		}

		assistantPrompt("\nAssistant: %s\n", answer)
	}

	return nil
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
