package platform

import (
	"github.com/goccy/go-json"

	"github.com/socialgate/socialgate/internal/core"
)

// Remote payload shapes. Only the fields the formatters read are declared.

type graphPicture struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

type graphSummary struct {
	Summary struct {
		TotalCount int64 `json:"total_count"`
	} `json:"summary"`
}

type graphInsight struct {
	Name        string `json:"name"`
	Period      string `json:"period"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Values      []struct {
		Value   any    `json:"value"`
		EndTime string `json:"end_time"`
	} `json:"values"`
}

type fbPage struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Category       string       `json:"category"`
	FanCount       int64        `json:"fan_count"`
	FollowersCount int64        `json:"followers_count"`
	Picture        graphPicture `json:"picture"`
	Link           string       `json:"link"`
	About          string       `json:"about"`
}

type fbPost struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	CreatedTime  string `json:"created_time"`
	FullPicture  string `json:"full_picture"`
	PermalinkURL string `json:"permalink_url"`
	Shares       struct {
		Count int64 `json:"count"`
	} `json:"shares"`
	Likes    graphSummary `json:"likes"`
	Comments graphSummary `json:"comments"`
}

type fbUser struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Email   string       `json:"email"`
	Picture graphPicture `json:"picture"`
}

type igProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AccountType string `json:"account_type"`
	MediaCount  int64  `json:"media_count"`
}

type igMedia struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	Permalink    string `json:"permalink"`
	ThumbnailURL string `json:"thumbnail_url"`
	Timestamp    string `json:"timestamp"`
	Username     string `json:"username"`
}

type twPublicMetrics struct {
	RetweetCount   int64 `json:"retweet_count"`
	LikeCount      int64 `json:"like_count"`
	ReplyCount     int64 `json:"reply_count"`
	QuoteCount     int64 `json:"quote_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	TweetCount     int64 `json:"tweet_count"`
	ListedCount    int64 `json:"listed_count"`
}

type twUser struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Username        string          `json:"username"`
	Description     string          `json:"description"`
	ProfileImageURL string          `json:"profile_image_url"`
	Verified        bool            `json:"verified"`
	CreatedAt       string          `json:"created_at"`
	PublicMetrics   twPublicMetrics `json:"public_metrics"`
}

type twTweet struct {
	ID                 string              `json:"id"`
	Text               string              `json:"text"`
	CreatedAt          string              `json:"created_at"`
	AuthorID           string              `json:"author_id"`
	PublicMetrics      twPublicMetrics     `json:"public_metrics"`
	ContextAnnotations []ContextAnnotation `json:"context_annotations"`
}

// twIncludes keeps the typed users alongside the untouched includes object
// so it can be passed through to callers.
type twIncludes struct {
	Users []twUser
	raw   map[string]any
}

func (i *twIncludes) UnmarshalJSON(data []byte) error {
	var typed struct {
		Users []twUser `json:"users"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.Users = typed.Users
	i.raw = raw
	return nil
}

type twTweetList struct {
	Data     []twTweet      `json:"data"`
	Includes twIncludes     `json:"includes"`
	Meta     map[string]any `json:"meta"`
}

// RawIncludes returns the remote includes object verbatim.
func (l twTweetList) RawIncludes() map[string]any {
	if len(l.Includes.raw) == 0 {
		return nil
	}
	return l.Includes.raw
}

type ytThumbnails map[string]struct {
	URL string `json:"url"`
}

type ytChannel struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		CustomURL   string       `json:"customUrl"`
		PublishedAt string       `json:"publishedAt"`
		Country     string       `json:"country"`
		Thumbnails  ytThumbnails `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount       flexInt `json:"viewCount"`
		SubscriberCount flexInt `json:"subscriberCount"`
		VideoCount      flexInt `json:"videoCount"`
	} `json:"statistics"`
	BrandingSettings struct {
		Channel struct {
			Keywords string `json:"keywords"`
		} `json:"channel"`
		Image struct {
			BannerExternalURL string `json:"bannerExternalUrl"`
		} `json:"image"`
	} `json:"brandingSettings"`
}

type ytVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string       `json:"title"`
		Description  string       `json:"description"`
		ChannelID    string       `json:"channelId"`
		ChannelTitle string       `json:"channelTitle"`
		PublishedAt  string       `json:"publishedAt"`
		CategoryID   string       `json:"categoryId"`
		Tags         []string     `json:"tags"`
		Thumbnails   ytThumbnails `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    flexInt `json:"viewCount"`
		LikeCount    flexInt `json:"likeCount"`
		CommentCount flexInt `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration   string `json:"duration"`
		Definition string `json:"definition"`
	} `json:"contentDetails"`
}

type ytSearchResult struct {
	ID struct {
		ChannelID string `json:"channelId"`
	} `json:"id"`
	Snippet struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		PublishedAt string       `json:"publishedAt"`
		Thumbnails  ytThumbnails `json:"thumbnails"`
	} `json:"snippet"`
}

type ytPageInfo struct {
	NextPageToken string `json:"nextPageToken"`
	PrevPageToken string `json:"prevPageToken"`
	PageInfo      struct {
		TotalResults   int64 `json:"totalResults"`
		ResultsPerPage int64 `json:"resultsPerPage"`
	} `json:"pageInfo"`
}

func (p ytPageInfo) pagination() map[string]any {
	out := map[string]any{
		"totalResults":   p.PageInfo.TotalResults,
		"resultsPerPage": p.PageInfo.ResultsPerPage,
	}
	setIfAny(out, "nextPageToken", p.NextPageToken)
	setIfAny(out, "prevPageToken", p.PrevPageToken)
	return out
}

func setIfAny(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}

// best picks the largest thumbnail available.
func (t ytThumbnails) best() string {
	for _, size := range []string{"maxres", "high", "medium", "default"} {
		if thumb, ok := t[size]; ok && thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}

// Normalized records.

type FacebookPage struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Category       string        `json:"category"`
	FanCount       int64         `json:"fanCount"`
	FollowersCount int64         `json:"followersCount"`
	Picture        string        `json:"picture"`
	Link           string        `json:"link"`
	About          string        `json:"about"`
	Platform       core.Platform `json:"platform"`
}

type FacebookPost struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	CreatedTime string        `json:"createdTime"`
	Picture     string        `json:"picture"`
	Permalink   string        `json:"permalink"`
	Shares      int64         `json:"shares"`
	Likes       int64         `json:"likes"`
	Comments    int64         `json:"comments"`
	Platform    core.Platform `json:"platform"`
}

type FacebookUser struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Picture  string        `json:"picture"`
	Platform core.Platform `json:"platform"`
}

// Insight is shared by Facebook page and Instagram account insights.
type Insight struct {
	Name        string         `json:"name"`
	Period      string         `json:"period"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Values      []InsightValue `json:"values"`
	Platform    core.Platform  `json:"platform"`
}

type InsightValue struct {
	Value   any    `json:"value"`
	EndTime string `json:"endTime"`
}

type InstagramProfile struct {
	ID          string        `json:"id"`
	Username    string        `json:"username"`
	AccountType string        `json:"accountType"`
	MediaCount  int64         `json:"mediaCount"`
	Platform    core.Platform `json:"platform"`
}

type InstagramMedia struct {
	ID           string        `json:"id"`
	Caption      string        `json:"caption"`
	MediaType    string        `json:"mediaType"`
	MediaURL     string        `json:"mediaUrl"`
	Permalink    string        `json:"permalink"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	Timestamp    string        `json:"timestamp"`
	Username     string        `json:"username"`
	Platform     core.Platform `json:"platform"`
}

type TwitterUser struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Username        string        `json:"username"`
	Description     string        `json:"description"`
	ProfileImageURL string        `json:"profileImageUrl"`
	Verified        bool          `json:"verified"`
	CreatedAt       string        `json:"createdAt"`
	FollowersCount  int64         `json:"followersCount"`
	FollowingCount  int64         `json:"followingCount"`
	TweetCount      int64         `json:"tweetCount"`
	ListedCount     int64         `json:"listedCount"`
	Platform        core.Platform `json:"platform"`
}

// TweetAuthor is resolved from includes.users. Absent fields are omitted.
type TweetAuthor struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

type ContextAnnotation struct {
	Domain AnnotationEntity `json:"domain"`
	Entity AnnotationEntity `json:"entity"`
}

type AnnotationEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Tweet struct {
	ID                 string              `json:"id"`
	Text               string              `json:"text"`
	CreatedAt          string              `json:"createdAt,omitempty"`
	AuthorID           string              `json:"authorId"`
	Author             *TweetAuthor        `json:"author,omitempty"`
	RetweetCount       int64               `json:"retweetCount"`
	LikeCount          int64               `json:"likeCount"`
	ReplyCount         int64               `json:"replyCount"`
	QuoteCount         int64               `json:"quoteCount"`
	ContextAnnotations []ContextAnnotation `json:"contextAnnotations"`
	Platform           core.Platform       `json:"platform"`
}

type YouTubeChannel struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	CustomURL       string        `json:"customUrl"`
	PublishedAt     string        `json:"publishedAt"`
	Country         string        `json:"country"`
	Thumbnail       string        `json:"thumbnail"`
	BannerURL       string        `json:"bannerUrl"`
	Keywords        string        `json:"keywords"`
	SubscriberCount int64         `json:"subscriberCount"`
	VideoCount      int64         `json:"videoCount"`
	ViewCount       int64         `json:"viewCount"`
	Platform        core.Platform `json:"platform"`
}

type YouTubeVideo struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ChannelID    string        `json:"channelId"`
	ChannelTitle string        `json:"channelTitle"`
	PublishedAt  string        `json:"publishedAt"`
	CategoryID   string        `json:"categoryId"`
	Tags         []string      `json:"tags"`
	Thumbnail    string        `json:"thumbnail"`
	Duration     string        `json:"duration"`
	Definition   string        `json:"definition"`
	ViewCount    int64         `json:"viewCount"`
	LikeCount    int64         `json:"likeCount"`
	CommentCount int64         `json:"commentCount"`
	Platform     core.Platform `json:"platform"`
}

type YouTubeSearchChannel struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	PublishedAt string        `json:"publishedAt"`
	Thumbnail   string        `json:"thumbnail"`
	Platform    core.Platform `json:"platform"`
}

// Formatters. All are pure and map absent values to zero or empty.

func formatFacebookPage(p fbPage) FacebookPage {
	return FacebookPage{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		FanCount:       p.FanCount,
		FollowersCount: p.FollowersCount,
		Picture:        p.Picture.Data.URL,
		Link:           p.Link,
		About:          p.About,
		Platform:       core.PlatformFacebook,
	}
}

func formatFacebookPost(p fbPost) FacebookPost {
	return FacebookPost{
		ID:          p.ID,
		Message:     p.Message,
		CreatedTime: p.CreatedTime,
		Picture:     p.FullPicture,
		Permalink:   p.PermalinkURL,
		Shares:      p.Shares.Count,
		Likes:       p.Likes.Summary.TotalCount,
		Comments:    p.Comments.Summary.TotalCount,
		Platform:    core.PlatformFacebook,
	}
}

func formatFacebookUser(u fbUser) FacebookUser {
	return FacebookUser{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Picture:  u.Picture.Data.URL,
		Platform: core.PlatformFacebook,
	}
}

func formatInsights(platform core.Platform, insights []graphInsight) []Insight {
	out := make([]Insight, 0, len(insights))
	for _, in := range insights {
		values := make([]InsightValue, 0, len(in.Values))
		for _, v := range in.Values {
			values = append(values, InsightValue{Value: orZero(v.Value), EndTime: v.EndTime})
		}
		out = append(out, Insight{
			Name:        in.Name,
			Period:      in.Period,
			Title:       in.Title,
			Description: in.Description,
			Values:      values,
			Platform:    platform,
		})
	}
	return out
}

func formatInstagramProfile(p igProfile) InstagramProfile {
	return InstagramProfile{
		ID:          p.ID,
		Username:    p.Username,
		AccountType: p.AccountType,
		MediaCount:  p.MediaCount,
		Platform:    core.PlatformInstagram,
	}
}

func formatInstagramMedia(m igMedia) InstagramMedia {
	return InstagramMedia{
		ID:           m.ID,
		Caption:      m.Caption,
		MediaType:    m.MediaType,
		MediaURL:     m.MediaURL,
		Permalink:    m.Permalink,
		ThumbnailURL: m.ThumbnailURL,
		Timestamp:    m.Timestamp,
		Username:     m.Username,
		Platform:     core.PlatformInstagram,
	}
}

func formatTwitterUser(u twUser) TwitterUser {
	return TwitterUser{
		ID:              u.ID,
		Name:            u.Name,
		Username:        u.Username,
		Description:     u.Description,
		ProfileImageURL: u.ProfileImageURL,
		Verified:        u.Verified,
		CreatedAt:       u.CreatedAt,
		FollowersCount:  u.PublicMetrics.FollowersCount,
		FollowingCount:  u.PublicMetrics.FollowingCount,
		TweetCount:      u.PublicMetrics.TweetCount,
		ListedCount:     u.PublicMetrics.ListedCount,
		Platform:        core.PlatformTwitter,
	}
}

// formatTweet attaches the author whose id matches author_id, if any.
func formatTweet(t twTweet, users []twUser) Tweet {
	annotations := make([]ContextAnnotation, 0, len(t.ContextAnnotations))
	annotations = append(annotations, t.ContextAnnotations...)

	tweet := Tweet{
		ID:                 t.ID,
		Text:               t.Text,
		CreatedAt:          t.CreatedAt,
		AuthorID:           t.AuthorID,
		RetweetCount:       t.PublicMetrics.RetweetCount,
		LikeCount:          t.PublicMetrics.LikeCount,
		ReplyCount:         t.PublicMetrics.ReplyCount,
		QuoteCount:         t.PublicMetrics.QuoteCount,
		ContextAnnotations: annotations,
		Platform:           core.PlatformTwitter,
	}
	if t.AuthorID == "" {
		return tweet
	}
	for _, u := range users {
		if u.ID == t.AuthorID {
			tweet.Author = &TweetAuthor{
				ID:              u.ID,
				Name:            u.Name,
				Username:        u.Username,
				ProfileImageURL: u.ProfileImageURL,
			}
			break
		}
	}
	return tweet
}

func formatTweets(tweets []twTweet, users []twUser) []Tweet {
	out := make([]Tweet, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, formatTweet(t, users))
	}
	return out
}

func formatYouTubeChannel(c ytChannel) YouTubeChannel {
	return YouTubeChannel{
		ID:              c.ID,
		Title:           c.Snippet.Title,
		Description:     c.Snippet.Description,
		CustomURL:       c.Snippet.CustomURL,
		PublishedAt:     c.Snippet.PublishedAt,
		Country:         c.Snippet.Country,
		Thumbnail:       c.Snippet.Thumbnails.best(),
		BannerURL:       c.BrandingSettings.Image.BannerExternalURL,
		Keywords:        c.BrandingSettings.Channel.Keywords,
		SubscriberCount: int64(c.Statistics.SubscriberCount),
		VideoCount:      int64(c.Statistics.VideoCount),
		ViewCount:       int64(c.Statistics.ViewCount),
		Platform:        core.PlatformYouTube,
	}
}

func formatYouTubeVideo(v ytVideo) YouTubeVideo {
	tags := make([]string, 0, len(v.Snippet.Tags))
	tags = append(tags, v.Snippet.Tags...)

	return YouTubeVideo{
		ID:           v.ID,
		Title:        v.Snippet.Title,
		Description:  v.Snippet.Description,
		ChannelID:    v.Snippet.ChannelID,
		ChannelTitle: v.Snippet.ChannelTitle,
		PublishedAt:  v.Snippet.PublishedAt,
		CategoryID:   v.Snippet.CategoryID,
		Tags:         tags,
		Thumbnail:    v.Snippet.Thumbnails.best(),
		Duration:     v.ContentDetails.Duration,
		Definition:   v.ContentDetails.Definition,
		ViewCount:    int64(v.Statistics.ViewCount),
		LikeCount:    int64(v.Statistics.LikeCount),
		CommentCount: int64(v.Statistics.CommentCount),
		Platform:     core.PlatformYouTube,
	}
}

func formatYouTubeVideos(videos []ytVideo) []YouTubeVideo {
	out := make([]YouTubeVideo, 0, len(videos))
	for _, v := range videos {
		out = append(out, formatYouTubeVideo(v))
	}
	return out
}

func formatYouTubeSearchChannel(r ytSearchResult) YouTubeSearchChannel {
	return YouTubeSearchChannel{
		ID:          r.ID.ChannelID,
		Title:       r.Snippet.Title,
		Description: r.Snippet.Description,
		PublishedAt: r.Snippet.PublishedAt,
		Thumbnail:   r.Snippet.Thumbnails.best(),
		Platform:    core.PlatformYouTube,
	}
}
