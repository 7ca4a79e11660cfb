package platform

import (
	"context"
	"strings"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

const (
	instagramProfileFields = "id,username,account_type,media_count"
	instagramMediaFields   = "id,caption,media_type,media_url,permalink,thumbnail_url,timestamp,username"
	instagramInsightMetric = "impressions,reach,profile_views"
	instagramBusiness      = "BUSINESS"
)

// Instagram proxies the Instagram Graph API. The caller supplies access_token.
type Instagram struct {
	Upstream Upstream
}

func (i *Instagram) Platform() core.Platform { return core.PlatformInstagram }

func (i *Instagram) Authorize(params core.Params) error {
	return requireAccessToken(core.PlatformInstagram, params)
}

func (i *Instagram) Actions() []engine.Action {
	return []engine.Action{
		{Name: "profile", Run: i.profile},
		{Name: "media", Run: i.media},
		{Name: "insights", Run: i.insights},
	}
}

func (i *Instagram) get(ctx context.Context, endpoint string, params core.Params, query map[string]string, out any) error {
	query["access_token"] = params.Get("access_token")
	c := i.Upstream.client(core.PlatformInstagram, InstagramBaseURL, nil)
	return c.Get(ctx, endpoint, query, out)
}

func (i *Instagram) profile(ctx context.Context, params core.Params) (*core.Result, error) {
	var profile igProfile
	if err := i.get(ctx, "/me", params, map[string]string{"fields": instagramProfileFields}, &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, core.NewNotFoundError(core.PlatformInstagram, "Profile not found")
	}
	return &core.Result{Data: formatInstagramProfile(profile)}, nil
}

func (i *Instagram) media(ctx context.Context, params core.Params) (*core.Result, error) {
	query := map[string]string{
		"fields": instagramMediaFields,
		"limit":  params.GetDefault("limit", "25"),
	}
	setIf(query, "after", params.Get("after"))

	var payload struct {
		Data   []igMedia      `json:"data"`
		Paging map[string]any `json:"paging"`
	}
	if err := i.get(ctx, "/me/media", params, query, &payload); err != nil {
		return nil, err
	}

	media := make([]InstagramMedia, 0, len(payload.Data))
	for _, m := range payload.Data {
		media = append(media, formatInstagramMedia(m))
	}
	return &core.Result{Data: media, Pagination: payload.Paging}, nil
}

// insights checks the account type first; only business accounts expose insights.
func (i *Instagram) insights(ctx context.Context, params core.Params) (*core.Result, error) {
	var account struct {
		AccountType string `json:"account_type"`
	}
	if err := i.get(ctx, "/me", params, map[string]string{"fields": "account_type"}, &account); err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(account.AccountType), instagramBusiness) {
		return nil, core.NewInputError(core.PlatformInstagram,
			"Business account required",
			"Insights are only available for business accounts")
	}

	query := map[string]string{
		"metric": params.GetDefault("metrics", instagramInsightMetric),
		"period": params.GetDefault("period", "day"),
	}
	var payload struct {
		Data []graphInsight `json:"data"`
	}
	if err := i.get(ctx, "/me/insights", params, query, &payload); err != nil {
		return nil, err
	}
	return &core.Result{Data: formatInsights(core.PlatformInstagram, payload.Data)}, nil
}
