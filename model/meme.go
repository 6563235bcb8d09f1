package model

import "time"

// Meme is a single feed item fetched from an external source. Rows are a
// re-fetchable cache, not user data: a later fetch of the same id overwrites
// the row (last write wins) and ClearAll leaves the collection alone.
// Paging reads in rowid order, so repeated upserts keep insertion order.
type Meme struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	URL       string    `json:"url" gorm:"not null"`
	Subreddit string    `json:"subreddit" gorm:"index"`
	Permalink string    `json:"permalink"`
	Upvotes   int       `json:"upvotes"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
