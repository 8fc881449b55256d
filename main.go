package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	cfg, cfgErr := LoadConfig(".env")

	cmd := &cobra.Command{
		Use:           "tag-o",
		Short:         "Authoritative session server for the platformer tag game",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			if envFile != ".env" {
				loaded, err := LoadConfig(envFile)
				if err != nil {
					return err
				}
				// flags set on the command line still win
				applyUnsetFlags(cmd, &cfg, loaded)
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&envFile, "env", ".env", "optional dotenv file")
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	f.StringVar(&cfg.ClientDir, "client", cfg.ClientDir, "static client directory (empty disables)")
	f.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "join URL encoded in /qr.png")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	f.StringVar(&cfg.HistoryDSN, "history", cfg.HistoryDSN, "sqlite DSN for match history")
	f.StringSliceVar(&cfg.AllowedOrigins, "origins", cfg.AllowedOrigins, "CORS allowed origins")
	return cmd
}

func applyUnsetFlags(cmd *cobra.Command, cfg *Config, loaded Config) {
	f := cmd.Flags()
	if !f.Changed("addr") {
		cfg.Addr = loaded.Addr
	}
	if !f.Changed("client") {
		cfg.ClientDir = loaded.ClientDir
	}
	if !f.Changed("public-url") {
		cfg.PublicURL = loaded.PublicURL
	}
	if !f.Changed("log-level") {
		cfg.LogLevel = loaded.LogLevel
	}
	if !f.Changed("history") {
		cfg.HistoryDSN = loaded.HistoryDSN
	}
	if !f.Changed("origins") {
		cfg.AllowedOrigins = loaded.AllowedOrigins
	}
	cfg.ReservedNames = loaded.ReservedNames
	cfg.TicketSecret = loaded.TicketSecret
}

func serve(ctx context.Context, cfg Config) error {
	if err := SetupLogger(os.Stdout, cfg.LogLevel); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := ParseReservedNames(cfg.ReservedNames)
	if err != nil {
		return err
	}
	names, err := NewNamePolicy(table, []byte(cfg.TicketSecret), cfg.BcryptCost)
	if err != nil {
		return err
	}
	history, err := OpenHistory(cfg.HistoryDSN)
	if err != nil {
		return err
	}
	defer history.Close()

	game := NewGame(names, WithHistory(history))
	go game.Run(ctx)

	hub := NewHub(game)
	go hub.Run(ctx)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           SetupRoutes(hub, history, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("client", cfg.ClientDir).Int("reserved", len(table)).Msg("server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
