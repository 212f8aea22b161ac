package models

import "time"

const (
	PostKindBlog      = "blog"
	PostKindAdventure = "adventure"
)

// Post is a blog entry or an adventure. Adventures carry a video URL.
type Post struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Body        string     `json:"body"`
	BodyHTML    string     `json:"bodyHtml,omitempty"`
	Category    string     `json:"category,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty"`
	VideoURL    string     `json:"videoUrl,omitempty"`
	Location    string     `json:"location,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PostInput is the admin payload for creating or replacing a post.
type PostInput struct {
	Kind        string     `json:"kind" binding:"required,oneof=blog adventure"`
	Slug        string     `json:"slug" binding:"required,max=120"`
	Title       string     `json:"title" binding:"required,max=200"`
	Summary     string     `json:"summary"`
	Body        string     `json:"body"`
	Category    string     `json:"category"`
	CoverImage  string     `json:"coverImage" binding:"omitempty,url"`
	VideoURL    string     `json:"videoUrl" binding:"omitempty,url"`
	Location    string     `json:"location"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// PostFilter narrows post listings.
type PostFilter struct {
	Kind          string
	Category      string
	PublishedOnly bool
	Limit         int
}

// GalleryImage is one photo in the gallery.
type GalleryImage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption,omitempty"`
	Location  string    `json:"location,omitempty"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

type GalleryImageInput struct {
	URL       string `json:"url" binding:"required,url"`
	Caption   string `json:"caption"`
	Location  string `json:"location"`
	SortOrder int    `json:"sortOrder"`
}
