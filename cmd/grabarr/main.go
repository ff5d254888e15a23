// Package main is the entrypoint of Grabarr.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"grabarr/internal/artwork"
	"grabarr/internal/cfg"
	"grabarr/internal/database"
	"grabarr/internal/domain/keys"
	"grabarr/internal/fetch"
	"grabarr/internal/logging"
	"grabarr/internal/queue"
	"grabarr/internal/ratelimit"
	"grabarr/internal/repo"
	"grabarr/internal/server"
	"grabarr/internal/token"
	"grabarr/internal/transcode"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const dbFileName = "grabarr.db"

func main() {
	startTime := time.Now()

	// Optional .env for local runs, absence is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Notice: .env file was not loaded: %v\n", err)
	}

	cfg.InitCommands()
	if err := cfg.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !viper.GetBool("execute") {
		return // Help or version output, nothing to run
	}

	if err := run(startTime); err != nil {
		logging.E("Grabarr exiting with error: %v", err)
		os.Exit(1)
	}
}

func run(startTime time.Time) error {
	dataDir := viper.GetString(keys.DataDir)
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", dataDir, err)
	}

	logFile := viper.GetString(keys.LogFile)
	if logFile == "" {
		logFile = filepath.Join(dataDir, "grabarr.log")
	}
	if err := logging.Setup(viper.GetInt(keys.DebugLevel), logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Notice: log file was not created: %v\n", err)
	}

	logging.I("Grabarr (PID: %d) started at: %v",
		os.Getpid(), startTime.Format("2006-01-02 15:04:05.00 MST"))

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	db, err := database.InitDB(filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.DB.Close(); err != nil {
			logging.E("Failed to close database: %v", err)
		}
	}()
	store := repo.InitStores(db.DB)

	// Browser cookie export runs once at startup when requested.
	cookieFile := viper.GetString(keys.CookieFile)
	if domain := viper.GetString(keys.CookieBrowser); domain != "" {
		exported, err := fetch.ExportBrowserCookies(ctx, domain, filepath.Join(dataDir, "cookies.txt"))
		if err != nil {
			logging.W("Browser cookie export for %q failed: %v", domain, err)
		} else {
			cookieFile = exported
		}
	}

	toolTimeout := viper.GetDuration(keys.ToolTimeout)
	fetcher := fetch.New(fetch.Options{
		CookieFile:  cookieFile,
		ToolTimeout: toolTimeout,
	})
	transcoder := transcode.New(toolTimeout)

	media := cfg.NewMediaRoot(viper.GetDuration(keys.MediaRootCacheTTL), time.Now)
	conc := queue.NewConcurrencySetting(store.SettingsStore(), viper.GetDuration(keys.SettingsCacheTTL), time.Now)
	logging.I("Worker concurrency: %d", conc.Load(ctx))

	limiter := ratelimit.New(viper.GetDuration(keys.ArtworkInterval))
	limiter.Start(ctx)
	defer limiter.Stop()

	pool := queue.NewPool(
		store,
		fetcher,
		transcoder,
		media,
		conc,
		artwork.NewSaver(limiter),
		viper.GetBool(keys.OfficialFilter),
	)
	pool.Start(ctx)
	defer pool.Stop()

	tokens := token.NewService(store.SettingsStore(), viper.GetDuration(keys.StreamTokenTTL), time.Now)

	srv := &http.Server{
		Addr:              ":" + viper.GetString(keys.Port),
		Handler:           server.NewRouter(store, tokens, media, pool),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.I("Listening on %s", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logging.I("Shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.E("Server shutdown error: %v", err)
		}
	}

	logging.I("Grabarr finished at: %v", time.Now().Format("2006-01-02 15:04:05.00 MST"))
	return nil
}
