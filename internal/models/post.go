package models

import "time"

// Post statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post represents a blog post
type Post struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"` // HTML
	CoverImage string     `json:"cover_image,omitempty"`
	AuthorID   int64      `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Status     string     `json:"status"`
	Tags       []string   `json:"tags"`
	Likes      []int64    `json:"likes"` // user IDs, unique membership
	Comments   []Comment  `json:"comments"`
	PublishAt  *time.Time `json:"publish_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PostFilter narrows post listings
type PostFilter struct {
	Status   string // empty means any status
	AuthorID int64  // 0 means any author
	Search   string // matches title, content or tags
	Tag      string
	Limit    int // 0 means no limit
}

// Comment represents a single comment on a post
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
