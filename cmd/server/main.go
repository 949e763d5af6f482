package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oregamc-byte/yuruito/internal/config"
	"github.com/oregamc-byte/yuruito/internal/deck"
	"github.com/oregamc-byte/yuruito/internal/game"
	"github.com/oregamc-byte/yuruito/internal/httpapi"
	"github.com/oregamc-byte/yuruito/internal/theme"
	"github.com/oregamc-byte/yuruito/internal/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev" // Set at build time via -ldflags

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "yuruito",
		Short:         "Room server for a cooperative number-guessing party game.",
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("yuruito {{.Version}}\n")
	return cmd
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(cw)
}

func serve(ctx context.Context, cfg config.Config) error {
	rooms := game.NewRegistry()
	sock := ws.New(cfg)
	coord := game.NewCoordinator(rooms, sock, theme.NewSource(nil, nil), game.Options{
		GracePeriod: cfg.GracePeriod,
		HandSize:    cfg.HandSize,
		Deck:        deck.New(cfg.DeckMin, cfg.DeckMax),
	})
	sock.SetCoordinator(coord)

	io := sock.NewSocketServer()
	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io server stopped")
		}
	}()
	defer io.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.NewRouter(cfg, rooms, io),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
