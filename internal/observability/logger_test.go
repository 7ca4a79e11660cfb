package observability

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerPrefersServerLogger(t *testing.T) {
	origCLI, origServer := CLILogger, ServerLogger
	t.Cleanup(func() {
		CLILogger, ServerLogger = origCLI, origServer
	})

	CLILogger, ServerLogger = nil, nil
	assert.Nil(t, Logger())

	InitCLILogger("socialgate-test", true)
	require.NotNil(t, CLILogger)
	assert.Same(t, CLILogger, Logger())

	InitServerLogger("socialgate-test", "debug", "socialgate_test")
	require.NotNil(t, ServerLogger)
	assert.Same(t, ServerLogger, Logger())

	Logger().Debug("structured record", zap.String("platform", "twitter"))
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"debug":   "DEBUG",
		" Info ":  "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
		"":        "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestEmbeddedCrucibleVersion(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
}

func TestStopMetricsWithoutExporter(t *testing.T) {
	origSys, origExp := TelemetrySystem, PrometheusExporter
	t.Cleanup(func() {
		TelemetrySystem, PrometheusExporter = origSys, origExp
	})

	PrometheusExporter = nil
	require.NoError(t, StopMetrics())
	assert.Nil(t, TelemetrySystem)
	assert.Zero(t, GetMetricsPort())
}
