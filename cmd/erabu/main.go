// Command erabu runs the retrieval core: ranking, citation mapping, and
// what-if simulation, either as one-shot CLI commands over JSON on stdin or
// as an HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/canonical"
	"github.com/hyperjump/erabu/internal/citation"
	"github.com/hyperjump/erabu/internal/config"
	"github.com/hyperjump/erabu/internal/embedding"
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/preview"
	"github.com/hyperjump/erabu/internal/retrieval"
	"github.com/hyperjump/erabu/internal/scoring"
	"github.com/hyperjump/erabu/internal/server"
	"github.com/hyperjump/erabu/internal/vectorstore"
	"github.com/hyperjump/erabu/internal/whatif"
	"github.com/hyperjump/erabu/pkg/utils"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "erabu.yaml", "path to config file")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var runErr error
	switch args[0] {
	case "rank":
		runErr = runRank(cfg, logger)
	case "cite":
		runErr = runCite(cfg)
	case "whatif":
		runErr = runWhatIf()
	case "server":
		runErr = runServer(cfg, logger)
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: erabu [-config path] <command>

commands:
  rank     rank chunks for a query (JSON request on stdin)
  cite     map answer citations (JSON request on stdin)
  whatif   simulate re-ranking of a trace (JSON request on stdin)
  server   run the HTTP server
  version  print the version`)
}

func buildService(cfg *config.Config, logger *zap.Logger) (*retrieval.Service, func(), error) {
	var store vectorstore.Store
	cleanup := func() {}
	switch cfg.Store.Target {
	case "sqlite":
		s, err := vectorstore.NewSQLiteStore(cfg.Store.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		store = s
		cleanup = func() { s.Close() }
	default:
		store = vectorstore.NewMemoryStore()
	}

	model := embedding.ModelSpec{
		Provider:       cfg.Embedding.Provider,
		Model:          cfg.Embedding.Model,
		Version:        cfg.Embedding.Version,
		Dims:           cfg.Embedding.Dims,
		Precision:      cfg.Embedding.Precision,
		CandidateLimit: cfg.Embedding.CandidateLimit,
	}
	scorer := &scoring.Scorer{
		Model:    model,
		Embedder: embedding.NewHashEmbedder(model.Dims, model.Precision),
		Vectors:  store,
		Cache:    embedding.NewCache(cfg.Embedding.CacheSize),
		Enabled:  cfg.Retrieval.SemanticEnabled,
	}
	return retrieval.NewService(scorer, cfg.Retrieval.DefaultLimit, logger), cleanup, nil
}

func readStdin(v any) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}
	return nil
}

func writeCanonical(v any) error {
	out, err := canonical.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runRank(cfg *config.Config, logger *zap.Logger) error {
	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var req struct {
		Query    string         `json:"query"`
		Keywords []string       `json:"keywords"`
		Chunks   []models.Chunk `json:"chunks"`
		Tuning   map[string]any `json:"tuning"`
	}
	if err := readStdin(&req); err != nil {
		return err
	}
	tuningCfg, err := models.ParseTuningConfig(req.Tuning)
	if err != nil {
		return err
	}
	resp, err := svc.Retrieve(context.Background(), retrieval.Request{
		Query:    req.Query,
		Keywords: req.Keywords,
		Chunks:   req.Chunks,
		Tuning:   tuningCfg,
	})
	if err != nil {
		return err
	}
	return writeCanonical(resp)
}

func runCite(cfg *config.Config) error {
	var req struct {
		Answer   string            `json:"answer"`
		ChunkIDs []string          `json:"chunk_ids"`
		Trace    []models.TraceRef `json:"trace"`
		Chunks   []models.Chunk    `json:"chunks"`
	}
	if err := readStdin(&req); err != nil {
		return err
	}
	citations := citation.MapAnswerCitations(req.Answer, req.ChunkIDs, req.Trace, req.Chunks)
	chunksByID := make(map[string]models.Chunk, len(req.Chunks))
	for _, c := range req.Chunks {
		chunksByID[c.ChunkID()] = c
	}
	routes := preview.BuildRoutes(citations, chunksByID, cfg.Retrieval.PaletteSize)
	return writeCanonical(map[string]any{
		"citations": citations,
		"routes":    routes,
	})
}

func runWhatIf() error {
	var req struct {
		Trace     map[string]any `json:"trace"`
		Overrides map[string]any `json:"overrides"`
	}
	if err := readStdin(&req); err != nil {
		return err
	}
	result, err := whatif.Simulate(req.Trace, req.Overrides)
	if err != nil {
		return err
	}
	return writeCanonical(result)
}

func runServer(cfg *config.Config, logger *zap.Logger) error {
	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(cfg, svc, logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-done:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
