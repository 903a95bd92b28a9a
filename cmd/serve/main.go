package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	cfgPkg "github.com/mtessier/ircc-rag/pkg/config"
	"github.com/mtessier/ircc-rag/pkg/llm"
	"github.com/mtessier/ircc-rag/pkg/retriever"
	"github.com/mtessier/ircc-rag/pkg/store"
	"github.com/mtessier/ircc-rag/server"
)

func main() {
	var configPath, dbURL, port string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (overrides config)")
	flag.StringVar(&port, "port", "", "HTTP port (overrides config)")
	flag.Parse()

	godotenv.Load()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if dbURL != "" {
		config.Database.URL = dbURL
	}
	if port != "" {
		config.Server.Port = port
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config) error {
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

	srv := server.New(r, chatEngine, slog.Default())

	addr := ":" + config.Server.Port
	slog.Info("starting server", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
