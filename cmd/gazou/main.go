// Package main is the Gazou CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/gazou/internal/config"
	"github.com/hyperjump/gazou/internal/embedding"
	"github.com/hyperjump/gazou/internal/ingest"
	"github.com/hyperjump/gazou/internal/models"
	"github.com/hyperjump/gazou/internal/search"
	"github.com/hyperjump/gazou/internal/server"
	"github.com/hyperjump/gazou/internal/storage"
	"github.com/hyperjump/gazou/internal/token"
	"github.com/hyperjump/gazou/internal/tracker"
	"github.com/hyperjump/gazou/internal/vector"
	"github.com/hyperjump/gazou/internal/watcher"
	"github.com/hyperjump/gazou/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/gazou/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "gazou server" from the project dir uses the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
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

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "feedback":
		runFeedback()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("gazou version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (ingestion passes, token rejections, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := components.Index.EnsureCollection(startupCtx, cfg.Embedding.Dimensions); err != nil {
		startupCancel()
		logger.Fatal("Failed to ensure vector collection", zap.Error(err))
	}
	startupCancel()

	loopCtx, loopCancel := context.WithCancel(context.Background())
	defer loopCancel()

	loopOpts := []ingest.LoopOption{}
	if cfg.Ingest.Watch {
		nudge := make(chan struct{}, 1)
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.NewWatcher(cfg.Ingest.Directory, nudge, watchOpts...)
		if err := watchSvc.Start(loopCtx); err != nil {
			// The interval poll still covers the directory; a dead watcher only
			// costs latency.
			logger.Warn("Failed to start directory watcher", zap.Error(err))
		} else {
			defer watchSvc.Stop()
			loopOpts = append(loopOpts, ingest.WithNudge(nudge))
		}
	}

	loop := ingest.NewLoop(
		cfg.Ingest.Directory,
		time.Duration(cfg.Ingest.IntervalSeconds)*time.Second,
		cfg.Ingest.Extensions,
		components.Embedder,
		components.Index,
		components.Tracker,
		logger,
		loopOpts...,
	)
	go loop.Run(loopCtx)

	searchSvc := search.NewService(components.Embedder, components.Index, components.Codec, cfg.Vector.TopK)
	srv := server.NewServer(searchSvc, components.Codec, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	loopCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: gazou search [flags] <text>")
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		fmt.Println("Usage: gazou search [flags] <text>")
		os.Exit(1)
	}

	response, err := searchViaHTTP(*serverURL, queryStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		if len(response.Matches) == 0 {
			fmt.Println("No matches.")
			return
		}
		for i, m := range response.Matches {
			fmt.Printf("%d. %s (score %.4f)\n", i+1, m.ImageName, m.Score)
		}
		if response.Token != "" {
			fmt.Printf("\ntoken: %s\n", response.Token)
			fmt.Println("Rate the top match with: gazou feedback --token <token> --rating <1-5>")
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, text string) (*models.SearchResponse, error) {
	body, err := json.Marshal(models.SearchRequest{Text: text})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search-image", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runFeedback() {
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	tokenStr := fs.String("token", "", "result token from a previous search")
	rating := fs.Int("rating", 0, "rating for the top match (1-5)")
	_ = fs.Parse(os.Args[2:])

	if *tokenStr == "" || *rating == 0 {
		fmt.Println("Usage: gazou feedback --token <token> --rating <1-5>")
		os.Exit(1)
	}

	body, _ := json.Marshal(models.FeedbackRequest{Token: *tokenStr, Rating: *rating})
	resp, err := http.Post(*serverURL+"/api/v1/create-feedback", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Feedback failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out models.FeedbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Feedback recorded: %d\n", out.ID)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status struct {
		Feedback int64 `json:"feedback"`
		Config   *struct {
			Model               string `json:"model"`
			EmbeddingDimensions int    `json:"embedding_dimensions"`
			Collection          string `json:"collection"`
			IngestDirectory     string `json:"ingest_directory"`
			IngestIntervalS     int    `json:"ingest_interval_s"`
		} `json:"config"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("feedback:          %d   # count of recorded ratings\n", status.Feedback)
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			fmt.Printf("model:             %s\n", status.Config.Model)
			fmt.Printf("embedding_dims:    %d\n", status.Config.EmbeddingDimensions)
			fmt.Printf("collection:        %s\n", status.Config.Collection)
			fmt.Printf("ingest_directory:  %s\n", status.Config.IngestDirectory)
			fmt.Printf("ingest_interval:   %ds\n", status.Config.IngestIntervalS)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store    storage.FeedbackStore
	Embedder embedding.Embedder
	Index    vector.Index
	Tracker  tracker.Tracker
	Codec    token.Codec
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Tracker != nil {
		_ = c.Tracker.Close()
	}
}

func initializeComponents(cfg *config.Config) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder := embedding.NewClipEmbedder(
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
		cfg.Embedding.Dimensions,
		cfg.Embedding.CacheSize,
	)

	index := vector.NewQdrantIndex(cfg.Vector.BaseURL, cfg.Vector.Collection)

	var trk tracker.Tracker
	if cfg.Ingest.TrackerPath != "" {
		trk, err = tracker.NewSQLiteTracker(cfg.Ingest.TrackerPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize ingest tracker: %w", err)
		}
	} else {
		trk = tracker.NewMemoryTracker()
	}

	codecOpts := []token.JWTCodecOption{}
	if cfg.Token.ValidityHours > 0 {
		codecOpts = append(codecOpts, token.WithValidity(time.Duration(cfg.Token.ValidityHours)*time.Hour))
	}
	codec, err := token.NewJWTCodec(cfg.Token.Secret, codecOpts...)
	if err != nil {
		_ = store.Close()
		_ = trk.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	return &Components{
		Store:    store,
		Embedder: embedder,
		Index:    index,
		Tracker:  trk,
		Codec:    codec,
	}, nil
}

func printUsage() {
	fmt.Println(`gazou - Image search with text queries and verified feedback

Usage:
  gazou server [flags]            Start the ingestion loop and HTTP server
  gazou search [flags] <text>     Search indexed images by text
  gazou feedback [flags]          Rate a search result using its token
  gazou status [flags]            Show feedback count and configuration
  gazou version                   Show version
  gazou help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/gazou/config.yaml)
  --debug            Enable debug logging (ingestion passes, token rejections, etc.)

Search Flags:
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Feedback Flags:
  --server string    Server URL (default: http://localhost:8080)
  --token string     Result token from a previous search
  --rating int       Rating for the top match (1-5)

Status Flags:
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Examples:
  gazou server
  gazou search "a red car at sunset"
  gazou search --output json "a dog in the snow"
  gazou feedback --token eyJhb... --rating 5
  gazou status`)
}
