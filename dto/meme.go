package dto

import "github.com/airmems/meme_api/model"

// Meme feed DTOs
type MemeResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Subreddit string `json:"subreddit"`
	Permalink string `json:"permalink"`
	Upvotes   int    `json:"upvotes"`
	Author    string `json:"author"`
	CreatedAt int64  `json:"created"` // epoch millis, matches the feed wire format
}

type MemeFeedResponse struct {
	Memes    []MemeResponse `json:"memes"`
	Page     int            `json:"page"`
	Source   string         `json:"source"`   // feed, cache, fallback
	Fallback bool           `json:"fallback"` // true when placeholder content was substituted
}

func MapMemeToResponse(m *model.Meme) MemeResponse {
	return MemeResponse{
		ID:        m.ID,
		Title:     m.Title,
		URL:       m.URL,
		Subreddit: m.Subreddit,
		Permalink: m.Permalink,
		Upvotes:   m.Upvotes,
		Author:    m.Author,
		CreatedAt: m.CreatedAt.UnixMilli(),
	}
}

func MapMemesToResponse(memes []model.Meme) []MemeResponse {
	out := make([]MemeResponse, len(memes))
	for i := range memes {
		out[i] = MapMemeToResponse(&memes[i])
	}
	return out
}
