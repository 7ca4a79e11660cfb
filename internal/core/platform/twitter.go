package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

const (
	twitterUserFields  = "created_at,description,profile_image_url,public_metrics,verified"
	twitterTweetFields = "created_at,author_id,public_metrics,context_annotations"
	twitterExpansions  = "author_id"
	twitterAuthorField = "name,username,profile_image_url"
)

// Twitter proxies API v2 with an app bearer token from the environment.
type Twitter struct {
	Upstream Upstream
	Env      EnvFunc
}

func (t *Twitter) Platform() core.Platform { return core.PlatformTwitter }

func (t *Twitter) Authorize(params core.Params) error {
	if t.Env.get(EnvTwitterBearerToken) == "" {
		return core.NewConfigError(core.PlatformTwitter, "Twitter bearer token not configured")
	}
	return nil
}

func (t *Twitter) Actions() []engine.Action {
	return []engine.Action{
		{Name: "user_info", AnyOf: []string{"username", "user_id"}, Run: t.userInfo},
		{Name: "user_tweets", AnyOf: []string{"username", "user_id"}, Run: t.userTweets},
		{Name: "tweet_info", Required: []string{"tweet_id"}, Run: t.tweetInfo},
		{Name: "search_tweets", Required: []string{"query"}, Run: t.searchTweets},
		{Name: "trending_topics", Local: true, Run: t.trendingTopics},
	}
}

func (t *Twitter) get(ctx context.Context, endpoint string, query map[string]string, out any) error {
	c := t.Upstream.client(core.PlatformTwitter, TwitterBaseURL, map[string]string{
		"Authorization": "Bearer " + t.Env.get(EnvTwitterBearerToken),
	})
	return c.Get(ctx, endpoint, query, out)
}

// lookupUser fetches by user_id when given, otherwise by username.
func (t *Twitter) lookupUser(ctx context.Context, params core.Params) (*twUser, error) {
	endpoint := "/users/by/username/" + url.PathEscape(params.Get("username"))
	if id := params.Get("user_id"); id != "" {
		endpoint = "/users/" + url.PathEscape(id)
	}

	var payload struct {
		Data *twUser `json:"data"`
	}
	if err := t.get(ctx, endpoint, map[string]string{"user.fields": twitterUserFields}, &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil || payload.Data.ID == "" {
		return nil, core.NewNotFoundError(core.PlatformTwitter, "User not found")
	}
	return payload.Data, nil
}

func (t *Twitter) userInfo(ctx context.Context, params core.Params) (*core.Result, error) {
	user, err := t.lookupUser(ctx, params)
	if err != nil {
		return nil, err
	}
	return &core.Result{Data: formatTwitterUser(*user)}, nil
}

func (t *Twitter) userTweets(ctx context.Context, params core.Params) (*core.Result, error) {
	userID := params.Get("user_id")
	if userID == "" {
		user, err := t.lookupUser(ctx, params)
		if err != nil {
			return nil, err
		}
		userID = user.ID
	}

	query := t.tweetQuery()
	query["max_results"] = strconv.Itoa(boundedInt(params.Get("max_results"), 10, 5, 100))
	setIf(query, "pagination_token", params.Get("pagination_token"))

	var payload twTweetList
	if err := t.get(ctx, "/users/"+url.PathEscape(userID)+"/tweets", query, &payload); err != nil {
		return nil, err
	}
	return &core.Result{
		Data:       formatTweets(payload.Data, payload.Includes.Users),
		Pagination: payload.Meta,
		Includes:   payload.RawIncludes(),
	}, nil
}

func (t *Twitter) tweetInfo(ctx context.Context, params core.Params) (*core.Result, error) {
	var payload struct {
		Data     *twTweet   `json:"data"`
		Includes twIncludes `json:"includes"`
	}
	endpoint := "/tweets/" + url.PathEscape(params.Get("tweet_id"))
	if err := t.get(ctx, endpoint, t.tweetQuery(), &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil || payload.Data.ID == "" {
		return nil, core.NewNotFoundError(core.PlatformTwitter, "Tweet not found")
	}
	return &core.Result{Data: formatTweet(*payload.Data, payload.Includes.Users)}, nil
}

func (t *Twitter) searchTweets(ctx context.Context, params core.Params) (*core.Result, error) {
	query := t.tweetQuery()
	query["query"] = params.Get("query")
	query["max_results"] = strconv.Itoa(boundedInt(params.Get("max_results"), 10, 10, 100))
	setIf(query, "next_token", params.Get("next_token"))

	var payload twTweetList
	if err := t.get(ctx, "/tweets/search/recent", query, &payload); err != nil {
		return nil, err
	}
	return &core.Result{
		Data:       formatTweets(payload.Data, payload.Includes.Users),
		Pagination: payload.Meta,
		Includes:   payload.RawIncludes(),
	}, nil
}

func (t *Twitter) trendingTopics(ctx context.Context, params core.Params) (*core.Result, error) {
	return nil, core.NewUnimplementedError(core.PlatformTwitter, "Trending topics are not available in Twitter API v2")
}

func (t *Twitter) tweetQuery() map[string]string {
	return map[string]string{
		"tweet.fields": twitterTweetFields,
		"expansions":   twitterExpansions,
		"user.fields":  twitterAuthorField,
	}
}
