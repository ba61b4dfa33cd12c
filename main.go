package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
)

func processError(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(2)
}

func newSearcher(cfg *Config, client *http.Client, cache *ReqCache) ImageSearcher {
	switch cfg.Provider {
	case "pexels":
		return NewPexelsApi(cfg, client, cache)
	case "unsplash":
		return NewUnsplashApi(cfg, client, cache)
	default:
		return NewPixabayApi(cfg, client, cache)
	}
}

func main() {
	configPath := defaultConfigFile
	if p, ok := os.LookupEnv("IMGSEARCH_CONFIG"); ok && p != "" {
		configPath = p
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		processError(err)
	}

	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		processError(fmt.Errorf("could not open log file: %w", err))
	}
	defer logFile.Close()
	setupLogging(logFile, cfg.Log.Debug)

	log := NewLogger("main")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	searcher := newSearcher(cfg, newHTTPClient(), NewReqCache(cfg))
	log.Info().
		Str("provider", searcher.Type()).
		Int("perPage", cfg.PerPage).
		Int("upstreamPageSize", searcher.PageSize()).
		Msg("starting")

	app := NewApp(ctx, cfg, NewPagedFetcher(searcher))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Err(err).Msg("program exited with error")
		cancel()
		processError(err)
	}
	log.Info().Msg("bye")
}
