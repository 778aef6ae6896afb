package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ai-interviewer/internal/ai"
	"github.com/spigell/ai-interviewer/internal/interview"
	"github.com/spigell/ai-interviewer/internal/logger"
	"github.com/spigell/ai-interviewer/internal/server"
	"github.com/spigell/ai-interviewer/internal/store"
)

const (
	defaultListen   = ":8080"
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address, overrides the config file")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the ai-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building model provider", zap.Error(err))
	}

	runner, sessions, err := buildRunner(config, generator, logger)
	if err != nil {
		logger.Fatal("building session runner", zap.Error(err))
	}
	defer sessions.Close()

	listen := viper.GetString("listen")
	if listen == "" {
		listen = config.Listen
	}
	if listen == "" {
		listen = defaultListen
	}

	srv := server.New(runner, logger, listen)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// buildRunner assembles the state machine with its store, stages and archive.
func buildRunner(config *Config, generator ai.Generator, logger *zap.Logger) (*interview.Runner, store.Store, error) {
	driver, dsn := "", ""
	if config.Store != nil {
		driver = config.Store.Driver
		dsn = config.Store.DSN
	}

	sessions, err := store.New(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("building session store: %w", err)
	}

	maxLogLen := 0
	if config.Interview != nil {
		maxLogLen = config.Interview.MaxLogLength
	}

	stages := interview.NewStages(&interview.StageDeps{
		Generator:    generator,
		Logger:       logger,
		MaxLogLength: maxLogLen,
	})

	var archive *interview.Archive
	if config.Archive != nil {
		archive = interview.NewArchive(config.Archive.File)
	}

	runner := interview.NewRunner(&interview.RunnerDeps{
		Store:   sessions,
		Stages:  stages,
		Logger:  logger,
		Archive: archive,
	})

	return runner, sessions, nil
}
