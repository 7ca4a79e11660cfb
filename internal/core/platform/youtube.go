package platform

import (
	"context"
	"strconv"
	"strings"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

const (
	youtubeChannelParts = "snippet,statistics,brandingSettings"
	youtubeVideoParts   = "snippet,statistics,contentDetails"
)

// YouTube proxies Data API v3 with an API key from the environment.
type YouTube struct {
	Upstream Upstream
	Env      EnvFunc
}

func (y *YouTube) Platform() core.Platform { return core.PlatformYouTube }

func (y *YouTube) Authorize(params core.Params) error {
	if y.Env.get(EnvYouTubeAPIKey) == "" {
		return core.NewConfigError(core.PlatformYouTube, "YouTube API key not configured")
	}
	return nil
}

func (y *YouTube) Actions() []engine.Action {
	return []engine.Action{
		{Name: "channel_info", Required: []string{"channel_id"}, Run: y.channelInfo},
		{Name: "channel_videos", Required: []string{"channel_id"}, Run: y.channelVideos},
		{Name: "video_info", Required: []string{"video_id"}, Run: y.videoInfo},
		{Name: "search_channels", Required: []string{"query"}, Run: y.searchChannels},
		{Name: "trending_videos", Run: y.trendingVideos},
	}
}

func (y *YouTube) get(ctx context.Context, endpoint string, query map[string]string, out any) error {
	query["key"] = y.Env.get(EnvYouTubeAPIKey)
	c := y.Upstream.client(core.PlatformYouTube, YouTubeBaseURL, nil)
	return c.Get(ctx, endpoint, query, out)
}

func (y *YouTube) channelInfo(ctx context.Context, params core.Params) (*core.Result, error) {
	var payload struct {
		Items []ytChannel `json:"items"`
	}
	query := map[string]string{"part": youtubeChannelParts, "id": params.Get("channel_id")}
	if err := y.get(ctx, "/channels", query, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, core.NewNotFoundError(core.PlatformYouTube, "Channel not found")
	}
	return &core.Result{Data: formatYouTubeChannel(payload.Items[0])}, nil
}

// channelVideos resolves the uploads playlist, lists it, then batch-fetches
// statistics for the listed videos.
func (y *YouTube) channelVideos(ctx context.Context, params core.Params) (*core.Result, error) {
	var channels struct {
		Items []struct {
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	query := map[string]string{"part": "contentDetails", "id": params.Get("channel_id")}
	if err := y.get(ctx, "/channels", query, &channels); err != nil {
		return nil, err
	}
	if len(channels.Items) == 0 {
		return nil, core.NewNotFoundError(core.PlatformYouTube, "Channel not found")
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return nil, core.NewNotFoundError(core.PlatformYouTube, "Uploads playlist not found")
	}

	var playlist struct {
		Items []struct {
			ContentDetails struct {
				VideoID string `json:"videoId"`
			} `json:"contentDetails"`
		} `json:"items"`
		ytPageInfo
	}
	query = map[string]string{
		"part":       "contentDetails",
		"playlistId": uploads,
		"maxResults": strconv.Itoa(boundedInt(params.Get("max_results"), 25, 1, 50)),
	}
	setIf(query, "pageToken", params.Get("page_token"))
	if err := y.get(ctx, "/playlistItems", query, &playlist); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		if item.ContentDetails.VideoID != "" {
			ids = append(ids, item.ContentDetails.VideoID)
		}
	}
	if len(ids) == 0 {
		return &core.Result{Data: []YouTubeVideo{}, Pagination: playlist.pagination()}, nil
	}

	videos, err := y.fetchVideos(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &core.Result{Data: videos, Pagination: playlist.pagination()}, nil
}

func (y *YouTube) fetchVideos(ctx context.Context, ids []string) ([]YouTubeVideo, error) {
	var payload struct {
		Items []ytVideo `json:"items"`
	}
	query := map[string]string{"part": youtubeVideoParts, "id": strings.Join(ids, ",")}
	if err := y.get(ctx, "/videos", query, &payload); err != nil {
		return nil, err
	}
	return formatYouTubeVideos(payload.Items), nil
}

func (y *YouTube) videoInfo(ctx context.Context, params core.Params) (*core.Result, error) {
	videos, err := y.fetchVideos(ctx, []string{params.Get("video_id")})
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, core.NewNotFoundError(core.PlatformYouTube, "Video not found")
	}
	return &core.Result{Data: videos[0]}, nil
}

func (y *YouTube) searchChannels(ctx context.Context, params core.Params) (*core.Result, error) {
	query := map[string]string{
		"part":       "snippet",
		"type":       "channel",
		"q":          params.Get("query"),
		"maxResults": strconv.Itoa(boundedInt(params.Get("max_results"), 25, 1, 50)),
	}
	setIf(query, "pageToken", params.Get("page_token"))

	var payload struct {
		Items []ytSearchResult `json:"items"`
		ytPageInfo
	}
	if err := y.get(ctx, "/search", query, &payload); err != nil {
		return nil, err
	}

	channels := make([]YouTubeSearchChannel, 0, len(payload.Items))
	for _, item := range payload.Items {
		channels = append(channels, formatYouTubeSearchChannel(item))
	}
	return &core.Result{Data: channels, Pagination: payload.pagination()}, nil
}

func (y *YouTube) trendingVideos(ctx context.Context, params core.Params) (*core.Result, error) {
	query := map[string]string{
		"part":       youtubeVideoParts,
		"chart":      "mostPopular",
		"regionCode": strings.ToUpper(params.GetDefault("region_code", "US")),
		"maxResults": strconv.Itoa(boundedInt(params.Get("max_results"), 25, 1, 50)),
	}
	setIf(query, "videoCategoryId", params.Get("category_id"))
	setIf(query, "pageToken", params.Get("page_token"))

	var payload struct {
		Items []ytVideo `json:"items"`
		ytPageInfo
	}
	if err := y.get(ctx, "/videos", query, &payload); err != nil {
		return nil, err
	}
	return &core.Result{Data: formatYouTubeVideos(payload.Items), Pagination: payload.pagination()}, nil
}
