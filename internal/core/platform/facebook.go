package platform

import (
	"context"
	"net/url"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

const (
	facebookPageFields    = "id,name,category,fan_count,followers_count,picture,link,about"
	facebookPostFields    = "id,message,created_time,full_picture,permalink_url,shares,likes.summary(true),comments.summary(true)"
	facebookUserFields    = "id,name,email,picture"
	facebookInsightMetric = "page_impressions,page_reach,page_engaged_users,page_fans"
)

// Facebook proxies the Graph API. The caller supplies access_token.
type Facebook struct {
	Upstream Upstream
}

func (f *Facebook) Platform() core.Platform { return core.PlatformFacebook }

func (f *Facebook) Authorize(params core.Params) error {
	return requireAccessToken(core.PlatformFacebook, params)
}

func (f *Facebook) Actions() []engine.Action {
	return []engine.Action{
		{Name: "pages", Run: f.pages},
		{Name: "page_info", Required: []string{"page_id"}, Run: f.pageInfo},
		{Name: "page_posts", Required: []string{"page_id"}, Run: f.pagePosts},
		{Name: "page_insights", Required: []string{"page_id"}, Run: f.pageInsights},
		{Name: "user_info", Run: f.userInfo},
	}
}

func (f *Facebook) get(ctx context.Context, endpoint string, params core.Params, query map[string]string, out any) error {
	query["access_token"] = params.Get("access_token")
	c := f.Upstream.client(core.PlatformFacebook, FacebookBaseURL, nil)
	return c.Get(ctx, endpoint, query, out)
}

func (f *Facebook) pages(ctx context.Context, params core.Params) (*core.Result, error) {
	var payload struct {
		Data   []fbPage       `json:"data"`
		Paging map[string]any `json:"paging"`
	}
	if err := f.get(ctx, "/me/accounts", params, map[string]string{"fields": facebookPageFields}, &payload); err != nil {
		return nil, err
	}

	pages := make([]FacebookPage, 0, len(payload.Data))
	for _, p := range payload.Data {
		pages = append(pages, formatFacebookPage(p))
	}
	return &core.Result{Data: pages, Pagination: payload.Paging}, nil
}

func (f *Facebook) pageInfo(ctx context.Context, params core.Params) (*core.Result, error) {
	var page fbPage
	endpoint := "/" + url.PathEscape(params.Get("page_id"))
	if err := f.get(ctx, endpoint, params, map[string]string{"fields": facebookPageFields}, &page); err != nil {
		return nil, err
	}
	if page.ID == "" {
		return nil, core.NewNotFoundError(core.PlatformFacebook, "Page not found")
	}
	return &core.Result{Data: formatFacebookPage(page)}, nil
}

func (f *Facebook) pagePosts(ctx context.Context, params core.Params) (*core.Result, error) {
	query := map[string]string{
		"fields": facebookPostFields,
		"limit":  params.GetDefault("limit", "25"),
	}
	setIf(query, "after", params.Get("after"))

	var payload struct {
		Data   []fbPost       `json:"data"`
		Paging map[string]any `json:"paging"`
	}
	endpoint := "/" + url.PathEscape(params.Get("page_id")) + "/posts"
	if err := f.get(ctx, endpoint, params, query, &payload); err != nil {
		return nil, err
	}

	posts := make([]FacebookPost, 0, len(payload.Data))
	for _, p := range payload.Data {
		posts = append(posts, formatFacebookPost(p))
	}
	return &core.Result{Data: posts, Pagination: payload.Paging}, nil
}

func (f *Facebook) pageInsights(ctx context.Context, params core.Params) (*core.Result, error) {
	query := map[string]string{
		"metric": params.GetDefault("metrics", facebookInsightMetric),
		"period": params.GetDefault("period", "day"),
	}
	setIf(query, "since", params.Get("since"))
	setIf(query, "until", params.Get("until"))

	var payload struct {
		Data   []graphInsight `json:"data"`
		Paging map[string]any `json:"paging"`
	}
	endpoint := "/" + url.PathEscape(params.Get("page_id")) + "/insights"
	if err := f.get(ctx, endpoint, params, query, &payload); err != nil {
		return nil, err
	}

	return &core.Result{
		Data:       formatInsights(core.PlatformFacebook, payload.Data),
		Pagination: payload.Paging,
	}, nil
}

func (f *Facebook) userInfo(ctx context.Context, params core.Params) (*core.Result, error) {
	var user fbUser
	if err := f.get(ctx, "/me", params, map[string]string{"fields": facebookUserFields}, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, core.NewNotFoundError(core.PlatformFacebook, "User not found")
	}
	return &core.Result{Data: formatFacebookUser(user)}, nil
}
