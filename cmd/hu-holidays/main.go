package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/hu-holidays/internal/cache"
	"github.com/username/hu-holidays/internal/config"
	"github.com/username/hu-holidays/internal/metrics"
	"github.com/username/hu-holidays/internal/resolver"
	"github.com/username/hu-holidays/internal/sources"
	"github.com/username/hu-holidays/internal/transport"
	"github.com/username/hu-holidays/pkg/dateutil"
)

var (
	configPath   string
	outputFormat string
	cfg          *config.Config
	logger       *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hu-holidays",
		Short:         "Hungarian public holidays and weekend workdays",
		Long:          "Resolve Hungarian public holidays and transferred weekend workdays from ranked web sources with caching",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(outputFormat); err != nil {
				return err
			}

			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}

			if cfg.Log.File != "" {
				logger = initFileLogger(cfg.Log.File, cfg.Log.Level)
			} else {
				logger, err = initLogger(cfg.Log.Level)
				if err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml, $HOME/.hu-holidays, /etc/hu-holidays)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputTable, "Output format: table, json or yaml")

	rootCmd.AddCommand(
		serveCmd(),
		holidaysCmd(),
		workdaysCmd(),
		checkCmd(),
		sourcesCmd(),
		cacheCmd(),
		warmCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// app wires the resolution stack from configuration
type app struct {
	clock    dateutil.Clock
	registry *sources.Registry
	store    cache.Store
	metrics  *metrics.Metrics
	resolver *resolver.Resolver
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	clock := dateutil.SystemClock{}

	client := transport.NewHTTPClient(transport.Options{
		UserAgent:         cfg.Sources.UserAgent,
		RequestsPerSecond: cfg.Sources.RequestsPerSecond,
	}, logger)

	deps := sources.Deps{
		Client:  client,
		Clock:   clock,
		Timeout: cfg.Sources.GetTimeout(),
		Logger:  logger,
	}
	registry := sources.NewRegistry(sources.DefaultAdapters(deps, sources.Catalog{
		Disabled:  cfg.Sources.Disabled,
		Statutory: cfg.Sources.StatutoryFallback,
	})...)

	store, err := cache.New(ctx, cache.Options{
		Backend: cfg.Cache.Backend,
		Path:    cfg.Cache.Path,
		TTL:     cfg.Cache.GetTTL(),
	}, clock, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache")
	}

	m := metrics.New()

	logger.Debug("Application initialized",
		zap.Int("sources", registry.Len()),
		zap.String("cache_backend", cfg.Cache.Backend))

	return &app{
		clock:    clock,
		registry: registry,
		store:    store,
		metrics:  m,
		resolver: resolver.New(registry, store, m, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close cache", zap.Error(err))
	}
}

func initLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	return l, nil
}

func initFileLogger(logFile string, level string) *zap.Logger {
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core)
}
