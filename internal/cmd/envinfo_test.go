package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgate/socialgate/internal/appid"
	"github.com/socialgate/socialgate/internal/config"
	"github.com/socialgate/socialgate/internal/observability"
)

func TestEnvInfoRunsWithDefaults(t *testing.T) {
	observability.InitCLILogger("test", false)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v := viper.GetViper()
	config.SetDefaults(v)
	t.Cleanup(viper.Reset)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Platforms.For("twitter").BaseURL)
	assert.NotEmpty(t, config.DefaultConfigPath(appid.ConfigName))

	assert.NotPanics(t, func() {
		envInfoCmd.Run(envInfoCmd, nil)
	})
}
