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

	"github.com/rs/zerolog"

	"github.com/AelaNieve/appsalon/internal/account"
	"github.com/AelaNieve/appsalon/internal/catalog"
	"github.com/AelaNieve/appsalon/internal/config"
	"github.com/AelaNieve/appsalon/internal/hibp"
	"github.com/AelaNieve/appsalon/internal/httpapi"
	"github.com/AelaNieve/appsalon/internal/mailer"
	"github.com/AelaNieve/appsalon/internal/store/mongostore"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(log zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	smtpCfg, err := mailer.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load SMTP configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("disconnect from MongoDB")
		}
	}()
	log.Info().Msg("connected to MongoDB")

	db := client.Database(cfg.MongoDatabase)

	users, err := mongostore.NewUsers(ctx, db)
	if err != nil {
		return fmt.Errorf("prepare users collection: %w", err)
	}

	hibpOpts := []hibp.Option{hibp.WithTimeout(cfg.HIBPTimeout)}
	if cfg.HIBPBaseURL != "" {
		hibpOpts = append(hibpOpts, hibp.WithBaseURL(cfg.HIBPBaseURL))
	}

	accountCfg := account.DefaultConfig()
	accountCfg.Password.ForbiddenPatterns = cfg.ForbiddenWords

	engine, err := account.New().
		WithConfig(accountCfg).
		WithStore(users).
		WithBreachIndex(hibp.New(hibpOpts...)).
		WithNotifier(mailer.New(smtpCfg, cfg.FrontendURL)).
		WithLogger(log).
		Build()
	if err != nil {
		return fmt.Errorf("build account engine: %w", err)
	}

	services := catalog.NewUsecase(mongostore.NewServices(db))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpapi.NewRouter(engine, services, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown HTTP server")
	}

	// Drain pending notification emails before the process exits.
	engine.Close()
	if dropped := engine.NotificationsDropped(); dropped > 0 {
		log.Warn().Uint64("dropped", dropped).Msg("notifications dropped during run")
	}

	return nil
}
