package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/cdpchat/internal/models"
	"github.com/xhad/cdpchat/pkg/chatbot"
	"github.com/xhad/cdpchat/pkg/chunker"
	"github.com/xhad/cdpchat/pkg/classify"
	"github.com/xhad/cdpchat/pkg/config"
	"github.com/xhad/cdpchat/pkg/retriever"
	"github.com/xhad/cdpchat/pkg/scraper"
	"github.com/xhad/cdpchat/pkg/store"
	"github.com/xhad/cdpchat/server"
)

const usage = `Usage: cdpchat <command> [flags]

Commands:
  crawl   Scrape CDP documentation sites and save raw documents
  index   Chunk saved documents and write them to the persistent index
  serve   Index saved documents and start the HTTP chat server
  chat    Index saved documents and chat from the terminal

Common flags:
  -config <path>   Path to config file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command := os.Args[1]
	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "", "Path to config file")
	flags.Parse(os.Args[2:])

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", e)
		}
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	switch command {
	case "crawl":
		err = runCrawl(cfg)
	case "index":
		err = runIndex(cfg)
	case "serve":
		err = runServe(cfg, logger)
	case "chat":
		err = runChat(cfg, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("items"),
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

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func runCrawl(cfg *config.Config) error {
	ctx := context.Background()

	platforms := make([]string, 0, len(cfg.Scraper.DocsURLs))
	for platform := range cfg.Scraper.DocsURLs {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		docsURL := cfg.Scraper.DocsURLs[platform]
		color.Blue("\nCrawling %s documentation from %s\n", platform, docsURL)

		var scrapeCount int32
		bar := getProgressBar(cfg.Scraper.MaxPages, "Scraping documentation...")

		s, err := scraper.NewWithConfig(scraper.ScraperConfig{
			BaseURL:   docsURL,
			Platform:  platform,
			RateLimit: cfg.Scraper.RateLimit,
			MaxPages:  cfg.Scraper.MaxPages,
			OnProgress: func(url string) {
				bar.Set(int(atomic.AddInt32(&scrapeCount, 1)))
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize scraper for %s: %v", platform, err)
		}

		docs, err := s.Scrape(ctx, docsURL)
		bar.Finish()
		if err != nil {
			color.Red("Failed to crawl %s: %v\n", platform, err)
			continue
		}

		if err := scraper.SaveDocuments(cfg.Scraper.DataDir, platform, docs); err != nil {
			return fmt.Errorf("failed to save %s documents: %v", platform, err)
		}
		color.Green("✓ Saved %d %s documents\n", len(docs), platform)
	}

	return nil
}

// buildIndex creates the configured index backend and fills it with chunks
// prepared from the saved documents.
func buildIndex(ctx context.Context, cfg *config.Config) (store.Index, error) {
	var idx store.Index
	var err error

	switch cfg.Index.Backend {
	case "pgvector":
		idx, err = store.NewPGVectorStore(ctx, store.PGVectorConfig{
			ConnString:   cfg.Index.DatabaseURL,
			TableName:    cfg.Index.TableName,
			VectorDim:    cfg.Index.VectorDim,
			EmbedModel:   cfg.Index.EmbedModel,
			EmbedBaseURL: cfg.Index.EmbedBaseURL,
		})
	default:
		idx, err = store.NewBleveIndex()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index: %v", err)
	}

	prep := chunker.NewWithConfig(chunker.Config{
		ChunkSize:    cfg.Chunker.ChunkSize,
		ChunkOverlap: cfg.Chunker.ChunkOverlap,
	})

	for _, platform := range models.AllPlatforms() {
		docs, err := scraper.LoadDocuments(cfg.Scraper.DataDir, platform)
		if err != nil {
			color.Yellow("No saved documents for %s, skipping\n", platform)
			continue
		}

		var chunks []models.Chunk
		for _, doc := range docs {
			chunks = append(chunks, prep.Prepare(doc)...)
		}

		bar := getProgressBar(len(chunks), fmt.Sprintf("Indexing %s chunks...", platform))
		if err := idx.Add(ctx, chunks); err != nil {
			return nil, fmt.Errorf("failed to index %s chunks: %v", platform, err)
		}
		bar.Set(len(chunks))
		bar.Finish()
		color.Green("✓ Indexed %d %s chunks\n", len(chunks), platform)
	}

	return idx, nil
}

// runIndex builds the index and exits. Only useful with the pgvector backend,
// where the chunks and embeddings persist; the bleve backend lives in memory
// and is rebuilt by serve and chat on startup.
func runIndex(cfg *config.Config) error {
	if cfg.Index.Backend != "pgvector" {
		color.Yellow("The %s backend is in-memory; serve and chat rebuild it on startup.\n", cfg.Index.Backend)
		return nil
	}
	_, err := buildIndex(context.Background(), cfg)
	return err
}

func newChatbot(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*chatbot.Chatbot, error) {
	idx, err := buildIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := retriever.NewWithConfig(idx, classify.New(nil), retriever.Config{
		TopK:                cfg.Retrieval.TopK,
		TopKPerPlatform:     cfg.Retrieval.TopKPerPlatform,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
	}, logger)

	return chatbot.New(r, logger), nil
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	bot, err := newChatbot(context.Background(), cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, bot, logger)

	return srv.Start()
}

func runChat(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	bot, err := newChatbot(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Interactive chat loop with colored output
	color.Cyan("\nAsk about Segment, mParticle, Lytics or Zeotap (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := scanner.Text()
		if strings.ToLower(query) == "exit" {
			break
		}

		spinner := getSpinner(" Searching documentation...")
		resp := bot.Ask(ctx, query)
		spinner.Finish()
		fmt.Print("\r")

		assistantPrompt("\nAssistant: %s\n", resp.Message)
	}

	return nil
}
