// Package main is the Bunsho CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/bunsho/internal/config"
	"github.com/hyperjump/bunsho/internal/embedding"
	"github.com/hyperjump/bunsho/internal/llm"
	"github.com/hyperjump/bunsho/internal/pipeline"
	"github.com/hyperjump/bunsho/internal/server"
	"github.com/hyperjump/bunsho/internal/storage"
	"github.com/hyperjump/bunsho/internal/vector"
	"github.com/hyperjump/bunsho/internal/watcher"
	"github.com/hyperjump/bunsho/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/bunsho/config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "index":
		runIndex()
	case "ask":
		runAsk()
	case "query":
		runQuery()
	case "delete":
		runDelete()
	case "list":
		runList()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("bunsho version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: bunsho <command> [flags]

Commands:
  server    Run the HTTP API server (with drop-directory watching)
  index     Ingest a file or directory into the corpus
  ask       Ask a question answered from the indexed documents
  query     Retrieve the most relevant chunks for a question
  delete    Remove a document and its chunks by ID
  list      List indexed documents
  stats     Show corpus statistics
  version   Print the version

Run "bunsho <command> -h" for command flags.
`)
}

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project
// directory uses the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// components holds the wired dependencies behind a pipeline.
type components struct {
	Pipeline *pipeline.Pipeline
	Store    vector.Store
	DB       storage.Storage
	Embedder embedding.Embedder
	Config   *config.Config
	Logger   *zap.Logger
}

func (c *components) Close() {
	if memStore, ok := c.Store.(*vector.MemoryStore); ok && c.Config.Storage.VectorIndexPath != "" {
		if err := memStore.Save(c.Config.Storage.VectorIndexPath); err != nil {
			c.Logger.Warn("vector index save failed",
				zap.String("path", c.Config.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	_ = c.Store.Close()
	_ = c.Embedder.Close()
	_ = c.DB.Close()
	_ = c.Logger.Sync()
}

func initializeComponents(cfg *config.Config, debug bool) (*components, error) {
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store, err := vector.New(ctx, cfg.Storage, cfg.Embedding.Dimensions)
	if err != nil {
		_ = embedder.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create vector store: %w", err)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.LLM.OllamaURL != "" {
		client := llm.NewOllamaClient(cfg.LLM.OllamaURL, cfg.LLM.Model)
		opts = append(opts, pipeline.WithInterpreter(llm.NewInterpreter(client, llm.WithLogger(logger))))
	}

	return &components{
		Pipeline: pipeline.New(cfg, db, store, embedder, opts...),
		Store:    store,
		DB:       db,
		Embedder: embedder,
		Config:   cfg,
		Logger:   logger,
	}, nil
}

func setupOrExit(fs *flag.FlagSet, configPath *string, debugFlag *bool) *components {
	_ = fs.Parse(os.Args[2:])
	cfg, resolved, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debug := cfg.Debug
	if debugFlag != nil && *debugFlag {
		debug = true
	}
	c, err := initializeComponents(cfg, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	c.Logger.Debug("config loaded", zap.String("config_path", resolved))
	return c
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolved, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	c, err := initializeComponents(cfg, cfg.Debug || *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()
	logger := c.Logger
	logger.Info("config loaded", zap.String("config_path", resolved))

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchSvc = watcher.NewWatcher(
			c.Pipeline,
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			watcher.WithLogger(logger),
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		go watchSvc.SyncExistingFiles(watchCtx)
	}

	srv := server.NewServer(c.Pipeline, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !strings.Contains(err.Error(), "Server closed") {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	c := setupOrExit(fs, configPath, debug)
	defer c.Close()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bunsho index [flags] <file-or-directory>")
		os.Exit(1)
	}
	target := fs.Arg(0)

	ctx := context.Background()
	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot access %s: %v\n", target, err)
		os.Exit(1)
	}

	paths := []string{target}
	if info.IsDir() {
		paths = paths[:0]
		_ = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if c.Pipeline.Supports(filepath.Ext(path)) {
				paths = append(paths, path)
			}
			return nil
		})
	}

	indexed := 0
	for _, path := range paths {
		doc, err := c.Pipeline.IngestFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to index %s: %v\n", path, err)
			continue
		}
		fmt.Printf("Indexed %s (id=%s, language=%s)\n", path, doc.ID, doc.Language)
		indexed++
	}
	fmt.Printf("Indexed %d of %d files\n", indexed, len(paths))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	c := setupOrExit(fs, configPath, nil)
	defer c.Close()

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: bunsho ask [flags] <question>")
		os.Exit(1)
	}

	answer, err := c.Pipeline.Ask(context.Background(), question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range answer.Sources {
			fmt.Printf("  [%d] %s (score %.3f)\n", i+1, src.ID, src.Score)
		}
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	topK := fs.Int("k", 0, "number of chunks to return (0 = config default)")
	c := setupOrExit(fs, configPath, nil)
	defer c.Close()

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: bunsho query [flags] <question>")
		os.Exit(1)
	}

	chunks, err := c.Pipeline.Query(context.Background(), question, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if len(chunks) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, chunk := range chunks {
		fmt.Printf("[%d] %s (score %.3f)\n%s\n\n", i+1, chunk.ID, chunk.Score, utils.Truncate(chunk.Content, 300))
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	c := setupOrExit(fs, configPath, nil)
	defer c.Close()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bunsho delete [flags] <document-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)
	if err := c.Pipeline.Delete(context.Background(), id); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %s\n", id)
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 50, "maximum documents to list")
	c := setupOrExit(fs, configPath, nil)
	defer c.Close()

	docs, err := c.Pipeline.ListDocuments(context.Background(), 0, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Println("No documents indexed.")
		return
	}
	for _, doc := range docs {
		fmt.Printf("%s  %-10s %-8s %s\n", doc.ID, doc.FileType, doc.Status, doc.Filename)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	c := setupOrExit(fs, configPath, nil)
	defer c.Close()

	stats, err := c.Pipeline.GetStats(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Documents:  %d\nChunks:     %d\nEmbeddings: %d\n", stats.Documents, stats.Chunks, stats.Embeddings)
}
