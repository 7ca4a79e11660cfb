package cmd

import (
	"bytes"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgate/socialgate/internal/config"
	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/output"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"video_id=abc", "q=a=b", " max_results =5"})
	require.NoError(t, err)
	assert.Equal(t, "abc", params.Get("video_id"))
	assert.Equal(t, "a=b", params.Get("q"))
	assert.Equal(t, "5", params.Get("max_results"))

	_, err = parseParams([]string{"novalue"})
	require.Error(t, err)
	_, err = parseParams([]string{"=x"})
	require.Error(t, err)
}

func TestDescribeActionError(t *testing.T) {
	err := describeActionError(core.NewNotFoundError(core.PlatformYouTube, "Video not found"))
	assert.Equal(t, "youtube: Video not found (404)", err.Error())

	plain := stderrors.New("boom")
	assert.Same(t, plain, describeActionError(plain))
}

func TestResetTargets(t *testing.T) {
	all, err := resetTargets(true, nil)
	require.NoError(t, err)
	assert.Equal(t, core.Platforms, all)

	some, err := resetTargets(false, []string{"Twitter", "twitter", "youtube"})
	require.NoError(t, err)
	assert.Equal(t, []core.Platform{core.PlatformTwitter, core.PlatformYouTube}, some)

	_, err = resetTargets(false, nil)
	require.Error(t, err)
	_, err = resetTargets(true, []string{"twitter"})
	require.Error(t, err)
	_, err = resetTargets(false, []string{"myspace"})
	require.Error(t, err)
}

func TestWriteRateLimitResetResult(t *testing.T) {
	var buf bytes.Buffer
	result := rateLimitResetResult{Platforms: []core.Platform{core.PlatformTwitter}, Cleared: 1}
	require.NoError(t, writeRateLimitResetResult(output.FormatTable, &buf, result))
	assert.Equal(t, "Reset 1/1 window(s): twitter\n", buf.String())

	buf.Reset()
	result.DryRun = true
	require.NoError(t, writeRateLimitResetResult(output.FormatJSON, &buf, result))
	assert.Contains(t, buf.String(), `"dry_run": true`)
}

func TestRenderUsageLines(t *testing.T) {
	usages := []core.RateLimitUsage{
		core.NewRateLimitUsage(core.PlatformTwitter, 300, 15*time.Minute, 12, "memory"),
		core.NewRateLimitUsage(core.PlatformYouTube, 100, time.Minute, -1, "redis"),
	}
	rendered := renderUsageLines(usages)
	assert.Contains(t, rendered, "twitter: used=12/300 window=15m0s remaining=288 store=memory")
	assert.Contains(t, rendered, "youtube: used=?/100")
	assert.Contains(t, renderUsageLines(nil), "(no platforms registered)")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "twitter.search_tweets", sanitizeFilename("Twitter.search_tweets"))
	assert.Equal(t, "a-b", sanitizeFilename("  a / b "))
	assert.Equal(t, "output", sanitizeFilename("///"))
}

func TestResolveSinkOutDir(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	addOutputFlags(cmd, "table|json|yaml")
	dir := t.TempDir()
	require.NoError(t, cmd.Flags().Set("out-dir", dir))

	sink, err := resolveSink(cmd, output.FormatYAML, "youtube.video_info")
	require.NoError(t, err)
	defer func() { _ = sink.close() }()
	assert.Equal(t, filepath.Join(dir, "youtube.video_info.yaml"), sink.path)

	require.NoError(t, cmd.Flags().Set("out", "file.json"))
	_, err = resolveSink(cmd, output.FormatJSON, "x")
	require.Error(t, err)
}

func TestChangedSections(t *testing.T) {
	a := &config.Config{}
	b := &config.Config{}
	assert.Empty(t, changedSections(a, b))

	b.Server.Port = 9000
	b.Logging.Level = "debug"
	assert.Equal(t, []string{"server", "logging"}, changedSections(a, b))
	assert.Nil(t, changedSections(nil, b))
}
