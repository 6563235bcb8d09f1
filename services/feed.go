package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/airmems/meme_api/dto"
	"github.com/airmems/meme_api/model"
	"github.com/airmems/meme_api/shared"
)

const (
	redditAPIBase   = "https://www.reddit.com"
	memeAPIFallback = "https://meme-api.com/gimme"

	feedPageSize  = 20
	feedCacheTTL  = 5 * time.Minute
	feedCachePref = "feed:page:"
)

// englishSubreddits are the secondary sources; only the first two are
// queried per page to keep request volume down.
var englishSubreddits = []string{
	"memes",
	"wholesomememes",
	"ProgrammerHumor",
	"EnglishMemes",
	"educationalmemes",
}

// filterKeywords is the fixed blocklist; a case-insensitive substring match
// against title or subreddit drops the item.
var filterKeywords = []string{
	"nsfw", "adult", "sexual", "violence", "hate", "offensive",
	"inappropriate", "explicit", "mature", "disturbing",
}

var imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

// FeedSource says where a page of memes came from.
type FeedSource string

const (
	SourceFeed     FeedSource = "feed"     // fetched live from an upstream source
	SourceCache    FeedSource = "cache"    // served from the redis page cache
	SourceStore    FeedSource = "store"    // served from previously persisted memes
	SourceFallback FeedSource = "fallback" // placeholder content, all sources failed
)

// FetchResult distinguishes a real page from the placeholder branch; callers
// never see an empty successful result.
type FetchResult struct {
	Memes    []model.Meme
	Source   FeedSource
	Fallback bool
}

// FeedClient fetches, filters, deduplicates and shuffles one page of memes.
// Individual source failures are logged and swallowed; only total failure
// across every source selects the placeholder branch.
type FeedClient struct {
	http        *http.Client
	memeAPIBase string
	redditBase  string
	subreddits  []string
	rng         *rand.Rand
}

func NewFeedClient(client *http.Client) *FeedClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &FeedClient{
		http:        client,
		memeAPIBase: memeAPIFallback,
		redditBase:  redditAPIBase,
		subreddits:  englishSubreddits,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type redditPost struct {
	Data struct {
		ID         string  `json:"id"`
		Title      string  `json:"title"`
		URL        string  `json:"url"`
		Subreddit  string  `json:"subreddit"`
		Permalink  string  `json:"permalink"`
		Ups        int     `json:"ups"`
		Author     string  `json:"author"`
		CreatedUTC float64 `json:"created_utc"`
		Over18     bool    `json:"over_18"`
		IsVideo    bool    `json:"is_video"`
	} `json:"data"`
}

type redditResponse struct {
	Data struct {
		Children []redditPost `json:"children"`
		After    *string      `json:"after"`
	} `json:"data"`
}

type memeAPIItem struct {
	PostLink  string `json:"postLink"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	NSFW      bool   `json:"nsfw"`
	Author    string `json:"author"`
	Ups       int    `json:"ups"`
}

func isImageURL(url string) bool {
	return imageExtRe.MatchString(url) ||
		strings.Contains(url, "i.redd.it") ||
		strings.Contains(url, "imgur.com")
}

func isContentAppropriate(title, subreddit string) bool {
	textToCheck := strings.ToLower(title + " " + subreddit)
	for _, keyword := range filterKeywords {
		if strings.Contains(textToCheck, keyword) {
			return false
		}
	}
	return true
}

func (fc *FeedClient) fetchFromMemeAPI(ctx context.Context) ([]model.Meme, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/20", fc.memeAPIBase), nil)
	if err != nil {
		return nil, err
	}

	resp, err := fc.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meme API error: %d", resp.StatusCode)
	}

	var payload struct {
		Memes []memeAPIItem `json:"memes"`
		memeAPIItem
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	items := payload.Memes
	if len(items) == 0 && payload.URL != "" {
		items = []memeAPIItem{payload.memeAPIItem}
	}

	var memes []model.Meme
	for _, item := range items {
		if item.URL == "" || item.Title == "" || item.NSFW {
			continue
		}
		if !isContentAppropriate(item.Title, item.Subreddit) || !isImageURL(item.URL) {
			continue
		}

		id := item.PostLink
		if idx := strings.LastIndex(id, "/"); idx >= 0 {
			id = id[idx+1:]
		}
		if id == "" {
			id = fmt.Sprintf("meme_%d", fc.rng.Int63())
		}

		subreddit := item.Subreddit
		if subreddit == "" {
			subreddit = "memes"
		}

		author := item.Author
		if author == "" {
			author = "unknown"
		}

		permalink := item.PostLink
		if permalink == "" {
			permalink = "#"
		}

		memes = append(memes, model.Meme{
			ID:        id,
			Title:     item.Title,
			URL:       item.URL,
			Subreddit: "r/" + subreddit,
			Permalink: permalink,
			Upvotes:   item.Ups,
			Author:    author,
			CreatedAt: time.Now(),
		})
	}
	return memes, nil
}

func (fc *FeedClient) fetchFromReddit(ctx context.Context, subreddit string) ([]model.Meme, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=25", fc.redditBase, subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := fc.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit API error: %d", resp.StatusCode)
	}

	var payload redditResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	var memes []model.Meme
	for _, post := range payload.Data.Children {
		d := post.Data
		if d.Over18 || d.IsVideo || !isImageURL(d.URL) || !isContentAppropriate(d.Title, d.Subreddit) {
			continue
		}
		memes = append(memes, model.Meme{
			ID:        d.ID,
			Title:     d.Title,
			URL:       d.URL,
			Subreddit: "r/" + d.Subreddit,
			Permalink: "https://reddit.com" + d.Permalink,
			Upvotes:   d.Ups,
			Author:    d.Author,
			CreatedAt: time.UnixMilli(int64(d.CreatedUTC * 1000)),
		})
	}
	return memes, nil
}

// FetchPage produces one deduplicated, filtered, shuffled page of at most 20
// memes. The primary source is tried first, then up to two subreddits; when
// every source yields nothing the fixed placeholder set is returned with
// Fallback set.
func (fc *FeedClient) FetchPage(ctx context.Context, page int) FetchResult {
	var all []model.Meme

	primary, err := fc.fetchFromMemeAPI(ctx)
	if err != nil {
		log.WithError(err).WithField("page", page).Warn("Primary meme source failed")
	}
	all = append(all, primary...)

	if len(all) == 0 {
		for _, subreddit := range fc.subreddits[:2] {
			memes, err := fc.fetchFromReddit(ctx, subreddit)
			if err != nil {
				log.WithError(err).WithField("subreddit", subreddit).Warn("Secondary meme source failed")
				continue
			}
			all = append(all, memes...)
		}
	}

	if len(all) == 0 {
		return FetchResult{Memes: PlaceholderMemes(), Source: SourceFallback, Fallback: true}
	}

	// Dedup by id, first occurrence wins.
	seen := make(map[string]bool, len(all))
	unique := all[:0]
	for _, meme := range all {
		if seen[meme.ID] {
			continue
		}
		seen[meme.ID] = true
		unique = append(unique, meme)
	}

	// Fisher-Yates shuffle for variety.
	for i := len(unique) - 1; i > 0; i-- {
		j := fc.rng.Intn(i + 1)
		unique[i], unique[j] = unique[j], unique[i]
	}

	if len(unique) > feedPageSize {
		unique = unique[:feedPageSize]
	}
	return FetchResult{Memes: unique, Source: SourceFeed}
}

// PlaceholderMemes is the fixed demo set returned when every source fails.
func PlaceholderMemes() []model.Meme {
	now := time.Now()
	return []model.Meme{
		{
			ID:        "demo1",
			Title:     "When you finally understand a complex English idiom",
			URL:       "https://images.unsplash.com/photo-1517077304055-6e89abbf09b0?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=400",
			Subreddit: "r/EnglishLearning",
			Permalink: "https://reddit.com/r/EnglishLearning/demo1",
			Upvotes:   1234,
			Author:    "learner123",
			CreatedAt: now,
		},
		{
			ID:        "demo2",
			Title:     "Me trying to use 'whom' correctly in a sentence",
			URL:       "https://images.unsplash.com/photo-1516131206008-dd041a9764fd?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=400",
			Subreddit: "r/EnglishMemes",
			Permalink: "https://reddit.com/r/EnglishMemes/demo2",
			Upvotes:   987,
			Author:    "grammar_geek",
			CreatedAt: now,
		},
		{
			ID:        "demo3",
			Title:     "When someone asks if you speak English and you say 'yes' but then they use slang",
			URL:       "https://images.unsplash.com/photo-1616347004137-2ed2eb9f6fce?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=400",
			Subreddit: "r/memes",
			Permalink: "https://reddit.com/r/memes/demo3",
			Upvotes:   2345,
			Author:    "confusedlearner",
			CreatedAt: now,
		},
	}
}

// FeedService combines the feed client with the redis page cache and the
// store so a page survives upstream outages: cache first, then live fetch,
// then previously persisted memes, then placeholders.
type FeedService struct {
	appContext.DefaultService

	client   *FeedClient
	sqlSvc   *SqliteService
	redisSvc *RedisService
	mediaSvc *MediaService
	monSvc   *MonitoringService
}

const FEED_SVC = "feed_svc"

func (svc FeedService) Id() string {
	return FEED_SVC
}

func (svc *FeedService) Configure(ctx *appContext.Context) error {
	svc.client = NewFeedClient(nil)
	return svc.DefaultService.Configure(ctx)
}

func (svc *FeedService) Start() error {
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.monSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// GetPage returns one feed page. Cache and storage failures degrade, they
// never propagate.
func (svc *FeedService) GetPage(ctx context.Context, page int) (*FetchResult, error) {
	cacheKey := fmt.Sprintf("%s%d", feedCachePref, page)

	var cached []model.Meme
	if err := svc.redisSvc.GetJSON(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
		svc.monSvc.RecordFeedFetch(string(SourceCache))
		return &FetchResult{Memes: cached, Source: SourceCache}, nil
	}

	result := svc.client.FetchPage(ctx, page)

	if result.Fallback {
		// Serve previously persisted memes if we have them; the placeholder
		// set is the branch of last resort.
		stored, err := svc.sqlSvc.Store().GetMemes(feedPageSize, page*feedPageSize)
		if err == nil && len(stored) > 0 {
			svc.monSvc.RecordFeedFetch(string(SourceStore))
			return &FetchResult{Memes: stored, Source: SourceStore}, nil
		}
		svc.monSvc.RecordFeedFetch(string(SourceFallback))
		return &result, nil
	}
	svc.monSvc.RecordFeedFetch(string(SourceFeed))

	if err := svc.sqlSvc.Store().PutMemes(result.Memes); err != nil {
		log.WithError(err).Warn("Failed to persist fetched memes")
	}
	if err := svc.redisSvc.SetJSON(ctx, cacheKey, result.Memes, feedCacheTTL); err != nil &&
		err != ErrCacheDisabled {
		log.WithError(err).Warn("Failed to cache feed page")
	}

	svc.mediaSvc.MirrorMemes(result.Memes)

	return &result, nil
}

// GetMeme reads a single meme from the store; nil when unknown.
func (svc *FeedService) GetMeme(id string) (*model.Meme, error) {
	meme, err := svc.sqlSvc.Store().GetMeme(id)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return meme, nil
}

// GetFeedPage is the handler-facing view of GetPage.
func (svc *FeedService) GetFeedPage(ctx context.Context, page int) (*dto.MemeFeedResponse, error) {
	result, err := svc.GetPage(ctx, page)
	if err != nil {
		return nil, err
	}
	return &dto.MemeFeedResponse{
		Memes:    dto.MapMemesToResponse(result.Memes),
		Page:     page,
		Source:   string(result.Source),
		Fallback: result.Fallback,
	}, nil
}

func (svc *FeedService) GetMemeByID(id string) (*dto.MemeResponse, error) {
	meme, err := svc.GetMeme(id)
	if err != nil {
		return nil, err
	}
	if meme == nil {
		return nil, shared.NewNotFoundError("Meme not found")
	}
	mapped := dto.MapMemeToResponse(meme)
	return &mapped, nil
}
