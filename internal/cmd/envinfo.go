package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/config"
	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/platform"
	"github.com/socialgate/socialgate/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime, configuration and upstream credential status.",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		version := crucible.GetVersion()

		log.Info("=== SocialGate Environment Information ===")
		log.Info("")

		identity := GetAppIdentity()
		log.Info("Application:")
		log.Info("  Name:       " + identity.BinaryName)
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("")

		log.Info("SSOT:")
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		log.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		log.Info("")

		cfg, err := loadConfig()
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		log.Info("Configuration:")
		log.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
		log.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
		log.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		log.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port), zap.Bool("metrics_enabled", cfg.Metrics.Enabled))
		configPath := config.DefaultConfigPath(identity.ConfigName)
		log.Info("  Config File:    "+configPath, zap.String("config_file", configPath))
		log.Info("")

		log.Info("Rate Limiting:")
		log.Info("  Store:          "+cfg.RateLimit.Store, zap.String("store", cfg.RateLimit.Store))
		log.Info("  Max Wait:       " + cfg.RateLimit.MaxWait.String())
		if cfg.RateLimit.Store == "redis" {
			log.Info("  Redis URL:      " + setOrNot(cfg.Redis.URL))
		}
		log.Info(fmt.Sprintf("  Inbound:        %t (%d per %s)", cfg.Inbound.Enabled, cfg.Inbound.Requests, cfg.Inbound.Window))
		log.Info(fmt.Sprintf("  Breaker:        %t", cfg.Breaker.Enabled))
		log.Info("")

		log.Info("Platforms:")
		for _, p := range core.Platforms {
			pc := cfg.Platforms.For(p)
			log.Info(fmt.Sprintf("  %-10s %s (%d per %s)", p, pc.BaseURL, pc.MaxRequests, pc.Window),
				zap.String("platform", string(p)))
		}
		log.Info("")

		log.Info("Credentials:")
		log.Info("  " + platform.EnvTwitterBearerToken + ": " + setOrNot(os.Getenv(platform.EnvTwitterBearerToken)))
		log.Info("  " + platform.EnvYouTubeAPIKey + ":      " + setOrNot(os.Getenv(platform.EnvYouTubeAPIKey)))
		log.Info("")

		log.Info("=== End Environment Information ===")
	},
}

func setOrNot(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
