package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

type sampleRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ViewCount  int64  `json:"viewCount"`
	PlatformID string `json:"platform"`
}

func sampleEnvelope() *core.Envelope {
	return core.NewEnvelope(core.PlatformYouTube, &core.Result{
		Data: []sampleRecord{
			{ID: "v1", Title: "First", ViewCount: 10, PlatformID: "youtube"},
			{ID: "v2", Title: strings.Repeat("long ", 30), ViewCount: 2000000, PlatformID: "youtube"},
		},
		Pagination: map[string]any{"nextPageToken": "CAUQAA"},
	}, time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC))
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestJSONFormatterMatchesAPI(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatEnvelope(sampleEnvelope())
	require.NoError(t, err)
	assert.Contains(t, rendered, `"success": true`)
	assert.Contains(t, rendered, `"viewCount": 2000000`)
	assert.Contains(t, rendered, `"timestamp": "2025-02-03T04:05:06.000Z"`)
}

func TestYAMLFormatterUsesAPIFieldNames(t *testing.T) {
	rendered, err := NewFormatter(FormatYAML).FormatEnvelope(sampleEnvelope())
	require.NoError(t, err)
	assert.Contains(t, rendered, "viewCount: 10")
	assert.Contains(t, rendered, "nextPageToken: CAUQAA")
	assert.Contains(t, rendered, "platform: youtube")
}

func TestTableFormatterListData(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatEnvelope(sampleEnvelope())
	require.NoError(t, err)
	assert.Contains(t, rendered, "ID")
	assert.Contains(t, rendered, "2000000")
	assert.Contains(t, rendered, "2 record(s) from youtube")
	assert.Contains(t, rendered, "nextPageToken: CAUQAA")
	assert.Contains(t, rendered, "...")
}

func TestTableFormatterObjectData(t *testing.T) {
	env := core.NewEnvelope(core.PlatformTwitter, &core.Result{
		Data: map[string]any{"id": "u1", "username": "gopher"},
	}, time.Unix(0, 0))

	rendered, err := NewFormatter(FormatTable).FormatEnvelope(env)
	require.NoError(t, err)
	assert.Contains(t, rendered, "gopher")
	assert.Contains(t, rendered, "FIELD")
}

func TestFormatPlatforms(t *testing.T) {
	infos := []engine.PlatformInfo{{
		Platform: core.PlatformTwitter,
		Actions:  []string{"user_info", "tweet_info"},
		Limit:    core.NewRateLimitUsage(core.PlatformTwitter, 300, 15*time.Minute, 4, "memory"),
	}}

	table, err := NewFormatter(FormatTable).FormatPlatforms(infos)
	require.NoError(t, err)
	assert.Contains(t, table, "Twitter")
	assert.Contains(t, table, "300 / 15m0s")
	assert.Contains(t, table, "user_info, tweet_info")

	js, err := NewFormatter(FormatJSON).FormatPlatforms(infos)
	require.NoError(t, err)
	assert.Contains(t, js, `"rate_limit"`)
	assert.Contains(t, js, `"window": "15m0s"`)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "json", Extension(FormatJSON))
	assert.Equal(t, "yaml", Extension(FormatYAML))
	assert.Equal(t, "txt", Extension(FormatTable))
}
