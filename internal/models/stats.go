package models

// Stats represents aggregate totals for the admin dashboard
type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalPosts    int64 `json:"total_posts"`
	TotalComments int64 `json:"total_comments"`
	TotalLikes    int64 `json:"total_likes"`
}

// RecentActivity represents the newest users and posts for the admin dashboard
type RecentActivity struct {
	RecentUsers []*User `json:"recent_users"`
	RecentPosts []*Post `json:"recent_posts"`
}
