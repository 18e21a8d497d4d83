package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/libertrade/deskd/internal/config"
	"github.com/libertrade/deskd/internal/gates"
	"github.com/libertrade/deskd/internal/httpapi"
	"github.com/libertrade/deskd/internal/store"
)

const (
	appName = "deskd"
	version = "v1.2.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Trading desk journal and discipline gate service",
		Version: version,
		Long: `deskd is the backend for a single-trader futures journal: daily
check-ins, session prep, post-session reviews, schema activation and
loss-limit logs, with a discipline gate that sizes the day from sleep,
recovery, and mental-state inputs.`,
	}

	rootCmd.PersistentFlags().String("config", os.Getenv("DESKD_CONFIG"), "Path to YAML config (or DESKD_CONFIG)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the journal API server",
		Long:  "Serves the JSON API, the activation websocket feed, /healthz, and /metrics",
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	serveCmd.Flags().String("backend", "", "Storage backend: memory|redis|postgres (overrides config)")

	gateCmd := &cobra.Command{
		Use:   "gate",
		Short: "Evaluate the discipline gate from the command line",
		Long:  "One-off gate evaluation from explicit inputs, without touching storage",
		RunE:  runGate,
	}
	gateCmd.Flags().String("sleep", "", "Sleep performance percentage")
	gateCmd.Flags().String("recovery", "", "Recovery score percentage")
	gateCmd.Flags().Int("awareness", 0, "Schema awareness 1-5 (0 = unanswered)")
	gateCmd.Flags().Int("connectedness", 0, "Adult-self connectedness 1-5 (0 = unanswered)")
	gateCmd.Flags().IntSlice("schema", nil, "Schema activation scores 0-10")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gateCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Storage.Backend = backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogger picks console output on a TTY and JSON otherwise, unless the
// config forces JSON.
func setupLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.LogJSON && term.IsTerminal(int(os.Stderr.Fd())) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.KV, error) {
	var kv store.KV
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		kv = store.NewMemory()
	case config.BackendRedis:
		kv = store.NewRedis(cfg.Storage.Redis)
	case config.BackendPostgres:
		pg, err := store.NewPostgres(ctx, cfg.Storage.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		kv = pg
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	logger.Info().Str("backend", cfg.Storage.Backend).Msg("storage ready")
	return store.WithBreaker(kv, cfg.Storage.Breaker), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := kv.Ping(ctx); err != nil {
		// Start degraded rather than refuse; reads fall back to defaults
		// and /healthz reports the store state.
		logger.Warn().Err(err).Msg("storage unreachable at startup")
	}

	api := httpapi.NewServer(cfg, kv, logger)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runGate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sleep, _ := cmd.Flags().GetString("sleep")
	recovery, _ := cmd.Flags().GetString("recovery")
	awareness, _ := cmd.Flags().GetInt("awareness")
	connectedness, _ := cmd.Flags().GetInt("connectedness")
	schema, _ := cmd.Flags().GetIntSlice("schema")

	eval := gates.NewEvaluator(cfg.GateConfig())
	decision := eval.Evaluate(sleep, recovery, awareness, connectedness, schema)

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if eval.RecoveryWarning(recovery) {
		fmt.Fprintln(os.Stderr, "warning: recovery below 70, expect reduced stress tolerance")
	}
	return nil
}
