package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/models"
)

// CreatePost creates a new post in the database
func (r *Repository) CreatePost(post *models.Post) error {
	query := `
		INSERT INTO blog.posts (title, content, cover_image, author_id, status, tags, publish_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, post.Title, post.Content, post.CoverImage, post.AuthorID,
		post.Status, pq.Array(post.Tags), post.PublishAt).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// FindPostByID retrieves a post with its likes and comments
func (r *Repository) FindPostByID(id int64) (*models.Post, error) {
	post := &models.Post{}
	query := `
		SELECT p.id, p.title, p.content, p.cover_image, p.author_id, u.username,
		       p.status, p.tags, p.publish_at, p.created_at, p.updated_at
		FROM blog.posts p
		JOIN blog.users u ON u.id = p.author_id
		WHERE p.id = $1`
	err := r.db.QueryRow(query, id).Scan(&post.ID, &post.Title, &post.Content, &post.CoverImage,
		&post.AuthorID, &post.AuthorName, &post.Status, pq.Array(&post.Tags),
		&post.PublishAt, &post.CreatedAt, &post.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if err := r.loadPostRelations(post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts retrieves posts matching the filter, newest first
func (r *Repository) ListPosts(filter models.PostFilter) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.cover_image, p.author_id, u.username,
		       p.status, p.tags, p.publish_at, p.created_at, p.updated_at
		FROM blog.posts p
		JOIN blog.users u ON u.id = p.author_id
		WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		query += " AND p.status = " + arg(filter.Status)
	}
	if filter.AuthorID != 0 {
		query += " AND p.author_id = " + arg(filter.AuthorID)
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (p.title ILIKE %s OR p.content ILIKE %s OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE %s))", p, p, p)
	}
	if filter.Tag != "" {
		query += " AND " + arg(filter.Tag) + " = ANY(p.tags)"
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.CoverImage,
			&post.AuthorID, &post.AuthorName, &post.Status, pq.Array(&post.Tags),
			&post.PublishAt, &post.CreatedAt, &post.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	for _, post := range posts {
		if err := r.loadPostRelations(post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// RecentPosts retrieves the newest posts regardless of status
func (r *Repository) RecentPosts(limit int) ([]*models.Post, error) {
	return r.ListPosts(models.PostFilter{Limit: limit})
}

// UpdatePost updates the mutable fields of a post
func (r *Repository) UpdatePost(post *models.Post) error {
	query := `
		UPDATE blog.posts
		SET title = $1, content = $2, cover_image = $3, status = $4, tags = $5,
		    publish_at = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
		RETURNING updated_at`
	err := r.db.QueryRow(query, post.Title, post.Content, post.CoverImage, post.Status,
		pq.Array(post.Tags), post.PublishAt, post.ID).Scan(&post.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperr.NotFoundf("post not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// DeletePost removes a post; its likes and comments cascade
func (r *Repository) DeletePost(id int64) error {
	res, err := r.db.Exec(`DELETE FROM blog.posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("post not found")
	}
	return nil
}

// PublishDue flips due scheduled drafts to published and returns how many
func (r *Repository) PublishDue(now time.Time) (int64, error) {
	query := `
		UPDATE blog.posts
		SET status = 'published', publish_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE status = 'draft' AND publish_at IS NOT NULL AND publish_at <= $1`
	res, err := r.db.Exec(query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to publish due posts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to publish due posts: %w", err)
	}
	return n, nil
}

func (r *Repository) loadPostRelations(post *models.Post) error {
	likes, err := r.postLikes(post.ID)
	if err != nil {
		return err
	}
	post.Likes = likes

	comments, err := r.postComments(post.ID)
	if err != nil {
		return err
	}
	post.Comments = comments
	return nil
}

func (r *Repository) postLikes(postID int64) ([]int64, error) {
	rows, err := r.db.Query(`SELECT user_id FROM blog.post_likes WHERE post_id = $1 ORDER BY created_at, user_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	defer rows.Close()

	likes := []int64{}
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	return likes, nil
}
