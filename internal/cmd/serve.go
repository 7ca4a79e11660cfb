package cmd

import (
	"context"
	"net/http"
	"os"
	"reflect"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/config"
	errwrap "github.com/socialgate/socialgate/internal/errors"
	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
	"github.com/socialgate/socialgate/internal/server"
	"github.com/socialgate/socialgate/internal/server/handlers"
	servermw "github.com/socialgate/socialgate/internal/server/middleware"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway HTTP server",
	Long: `Start the gateway HTTP server with graceful shutdown support.

Routes:
  GET|POST|OPTIONS /api/{facebook,instagram,twitter,youtube}
  GET /api/platforms, /health/*, /version, /metrics

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-read and validate the config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		identity := GetAppIdentity()
		namespace := identity.TelemetryNamespace()
		observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, namespace)
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "metrics initialization failed")
			}
		}
		metrics.SetServerStartTime(time.Now().Unix())

		gateway, st, err := buildGateway(ctx, cfg)
		if err != nil {
			logger.Error("Failed to build gateway", zap.Error(err))
			return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "gateway initialization failed")
		}

		logger.Info("Initializing server",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics", cfg.Metrics.Enabled),
			zap.Int("metrics_port", cfg.Metrics.Port),
			zap.String("rate_limit_store", st.Driver()))

		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("window_store", st)
		hm.RegisterChecker("app_identity", identityHealthChecker{
			binaryName: identity.BinaryName,
			envPrefix:  identity.EnvPrefix,
			configName: identity.ConfigName,
		})
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		handlers.SetAppIdentity(identity)

		srv := server.New(cfg.Server.Host, cfg.Server.Port, serverOptions(cfg, gateway, os.Getenv(identity.EnvPrefix+"ADMIN_TOKEN")))

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Shutdown handlers run last-registered first.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			if err := observability.StopMetrics(); err != nil {
				logger.Warn("Failed to stop metrics exporter", zap.Error(err))
			}
			if err := st.Close(); err != nil {
				logger.Warn("Failed to close rate limit store", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "server shutdown failed")
			}
			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			return reloadConfig(ctx, cfg)
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(ctx); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "server error")
		}
		return nil
	},
}

func serverOptions(cfg *config.Config, gateway handlers.Dispatcher, adminToken string) server.Options {
	opts := server.Options{
		Gateway: gateway,
		CORS: servermw.CORSOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         cfg.CORS.MaxAge,
		},
		AdminToken:   adminToken,
		MetricsPort:  cfg.Metrics.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if cfg.Inbound.Enabled {
		opts.InboundLimit = servermw.InboundLimitOptions{
			Requests: cfg.Inbound.Requests,
			Window:   cfg.Inbound.Window,
		}
	}
	return opts
}

// reloadConfig re-reads the config file and validates it. Platform limits,
// transports and listeners are fixed for the life of the process, so any
// change to them is reported as needing a restart.
func reloadConfig(ctx context.Context, running *config.Config) error {
	logger := observability.ServerLogger
	logger.Info("Received SIGHUP: attempting config reload")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Info("No config file found - using defaults and environment variables")
			return nil
		}
		logger.Error("Failed to reload config file",
			zap.String("file", viper.ConfigFileUsed()),
			zap.Error(err))
		return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "config reload failed")
	}

	next, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Error("Reloaded config is invalid", zap.Error(err))
		return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "config reload failed")
	}

	for _, section := range changedSections(running, next) {
		logger.Warn("Config change requires restart", zap.String("section", section))
	}
	logger.Info("Configuration reloaded successfully", zap.String("file", viper.ConfigFileUsed()))
	return nil
}

// changedSections names the top-level config sections that differ.
func changedSections(a, b *config.Config) []string {
	if a == nil || b == nil {
		return nil
	}
	var changed []string
	av := reflect.ValueOf(*a)
	bv := reflect.ValueOf(*b)
	t := av.Type()
	for i := 0; i < t.NumField(); i++ {
		if !reflect.DeepEqual(av.Field(i).Interface(), bv.Field(i).Interface()) {
			name := t.Field(i).Tag.Get("mapstructure")
			if name == "" {
				name = t.Field(i).Name
			}
			changed = append(changed, name)
		}
	}
	return changed
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
