package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedClient(memeAPIURL, redditURL string) *FeedClient {
	client := NewFeedClient(&http.Client{})
	client.memeAPIBase = memeAPIURL
	client.redditBase = redditURL
	client.rng = rand.New(rand.NewSource(1))
	return client
}

func memeAPIServer(t *testing.T, items []memeAPIItem) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"memes": items})
	}))
	t.Cleanup(server.Close)
	return server
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchPageFiltersAndDedups(t *testing.T) {
	items := []memeAPIItem{
		{PostLink: "https://redd.it/ok1", Title: "Clean meme", URL: "https://i.redd.it/ok1.jpg", Subreddit: "memes", Author: "a", Ups: 10},
		{PostLink: "https://redd.it/ok1", Title: "Clean meme again", URL: "https://i.redd.it/ok1.jpg", Subreddit: "memes", Author: "a", Ups: 10},
		{PostLink: "https://redd.it/nsfw1", Title: "Clean title", URL: "https://i.redd.it/n.jpg", Subreddit: "memes", NSFW: true},
		{PostLink: "https://redd.it/bad1", Title: "Very NSFW content", URL: "https://i.redd.it/b.jpg", Subreddit: "memes"},
		{PostLink: "https://redd.it/bad2", Title: "fine title", URL: "https://i.redd.it/b2.jpg", Subreddit: "adultmemes"},
		{PostLink: "https://redd.it/vid1", Title: "Video post", URL: "https://v.redd.it/clip.mp4", Subreddit: "memes"},
		{PostLink: "https://redd.it/ok2", Title: "Another clean one", URL: "https://imgur.com/ok2", Subreddit: "memes", Author: "b", Ups: 5},
	}
	primary := memeAPIServer(t, items)
	client := newTestFeedClient(primary.URL, "http://127.0.0.1:0")

	result := client.FetchPage(context.Background(), 0)

	assert.Equal(t, SourceFeed, result.Source)
	assert.False(t, result.Fallback)
	require.Len(t, result.Memes, 2)

	ids := map[string]bool{}
	for _, meme := range result.Memes {
		ids[meme.ID] = true
		assert.NotEmpty(t, meme.Title)
		assert.Equal(t, "r/memes", meme.Subreddit)
	}
	assert.True(t, ids["ok1"])
	assert.True(t, ids["ok2"])
}

func TestFetchPageCapsAtPageSize(t *testing.T) {
	var items []memeAPIItem
	for i := 0; i < 30; i++ {
		items = append(items, memeAPIItem{
			PostLink:  fmt.Sprintf("https://redd.it/p%d", i),
			Title:     fmt.Sprintf("Meme %d", i),
			URL:       fmt.Sprintf("https://i.redd.it/p%d.jpg", i),
			Subreddit: "memes",
		})
	}
	primary := memeAPIServer(t, items)
	client := newTestFeedClient(primary.URL, "http://127.0.0.1:0")

	result := client.FetchPage(context.Background(), 0)
	assert.Equal(t, SourceFeed, result.Source)
	assert.Len(t, result.Memes, feedPageSize)
}

func TestFetchPageFallsBackToReddit(t *testing.T) {
	primary := failingServer(t)
	reddit := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload redditResponse
		var post redditPost
		post.Data.ID = "r1"
		post.Data.Title = "Subreddit meme"
		post.Data.URL = "https://i.redd.it/r1.png"
		post.Data.Subreddit = "memes"
		post.Data.Permalink = "/r/memes/comments/r1"
		post.Data.Ups = 7
		post.Data.Author = "redditor"

		var nsfw redditPost
		nsfw.Data.ID = "r2"
		nsfw.Data.Title = "Hidden"
		nsfw.Data.URL = "https://i.redd.it/r2.png"
		nsfw.Data.Subreddit = "memes"
		nsfw.Data.Over18 = true

		payload.Data.Children = []redditPost{post, nsfw}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(reddit.Close)

	client := newTestFeedClient(primary.URL, reddit.URL)
	result := client.FetchPage(context.Background(), 0)

	assert.Equal(t, SourceFeed, result.Source)
	// Both queried subreddits hit the same fixture, so the duplicate id
	// collapses and the over_18 post is dropped.
	require.Len(t, result.Memes, 1)
	assert.Equal(t, "r1", result.Memes[0].ID)
	assert.Equal(t, "https://reddit.com/r/memes/comments/r1", result.Memes[0].Permalink)
}

func TestFetchPagePlaceholderOnTotalFailure(t *testing.T) {
	primary := failingServer(t)
	client := newTestFeedClient(primary.URL, primary.URL)

	result := client.FetchPage(context.Background(), 0)

	assert.True(t, result.Fallback)
	assert.Equal(t, SourceFallback, result.Source)
	require.Len(t, result.Memes, 3)

	ids := []string{result.Memes[0].ID, result.Memes[1].ID, result.Memes[2].ID}
	assert.ElementsMatch(t, []string{"demo1", "demo2", "demo3"}, ids)
	// The placeholder branch is never empty, so the feed always renders.
	for _, meme := range result.Memes {
		assert.NotEmpty(t, meme.URL)
		assert.NotEmpty(t, meme.Title)
	}
}

func TestFetchFromMemeAPISingleObjectPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(memeAPIItem{
			PostLink:  "https://redd.it/solo",
			Title:     "Single meme payload",
			URL:       "https://i.redd.it/solo.jpg",
			Subreddit: "memes",
			Author:    "solo",
			Ups:       1,
		})
	}))
	t.Cleanup(server.Close)

	client := newTestFeedClient(server.URL, "http://127.0.0.1:0")
	memes, err := client.fetchFromMemeAPI(context.Background())
	require.NoError(t, err)
	require.Len(t, memes, 1)
	assert.Equal(t, "solo", memes[0].ID)
}

func TestIsImageURL(t *testing.T) {
	assert.True(t, isImageURL("https://example.com/a.JPG"))
	assert.True(t, isImageURL("https://i.redd.it/abc"))
	assert.True(t, isImageURL("https://imgur.com/abc"))
	assert.False(t, isImageURL("https://v.redd.it/clip.mp4"))
	assert.False(t, isImageURL("https://example.com/page.html"))
}

func TestIsContentAppropriate(t *testing.T) {
	assert.True(t, isContentAppropriate("Wholesome cat", "memes"))
	assert.False(t, isContentAppropriate("NSFW surprise", "memes"))
	assert.False(t, isContentAppropriate("ok title", "ExplicitStuff"))
}
