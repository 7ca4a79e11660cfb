package cmd

import (
	"context"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/core/platform"
	errwrap "github.com/socialgate/socialgate/internal/errors"
	"github.com/socialgate/socialgate/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify the gateway could start: configuration validates, every platform
registers with its limiter and the rate limit store answers. Missing Twitter
or YouTube credentials are reported as warnings.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		if logger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", errwrap.NewConfigInvalidError("Logger not initialized"))
			return
		}
		logger.Info("Running health check...")

		if versionInfo.Version == "" {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		logger.Info("✅ Version information available", zap.String("version", versionInfo.Version))

		cfg, err := loadConfig()
		if err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		logger.Info("✅ Configuration valid")

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		gateway, st, err := buildGateway(ctx, cfg)
		if err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Gateway initialization failed", err)
			return
		}
		defer func() { _ = st.Close() }()

		if err := st.CheckHealth(ctx); err != nil {
			ExitWithCode(logger, foundry.ExitFailure, "Rate limit store unreachable", err)
			return
		}
		logger.Info("✅ Rate limit store ready", zap.String("driver", st.Driver()))

		for _, info := range gateway.Describe(ctx) {
			logger.Info("✅ Platform registered",
				zap.String("platform", string(info.Platform)),
				zap.Int("actions", len(info.Actions)),
				zap.Int("max_requests", info.Limit.MaxRequests),
				zap.String("window", info.Limit.WindowText))
		}

		for _, key := range []string{platform.EnvTwitterBearerToken, platform.EnvYouTubeAPIKey} {
			if os.Getenv(key) == "" {
				logger.Warn("⚠️  Credential not set; requests will fail with a configuration error", zap.String("env", key))
			}
		}

		logger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
