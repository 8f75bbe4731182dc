package repository

import (
	"fmt"

	"github.com/vtarasov/blog-service/internal/models"
)

// Stats returns aggregate totals across users, posts, comments and likes
func (r *Repository) Stats() (*models.Stats, error) {
	stats := &models.Stats{}
	query := `
		SELECT
			(SELECT COUNT(*) FROM blog.users),
			(SELECT COUNT(*) FROM blog.posts),
			(SELECT COUNT(*) FROM blog.post_comments),
			(SELECT COUNT(*) FROM blog.post_likes)`
	err := r.db.QueryRow(query).
		Scan(&stats.TotalUsers, &stats.TotalPosts, &stats.TotalComments, &stats.TotalLikes)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}
