package service

import (
	"context"
	"strings"
	"time"

	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/middleware"
	"github.com/vtarasov/blog-service/internal/models"
)

// PostInput carries the editable fields of a post
type PostInput struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	CoverImage string     `json:"cover_image"`
	Status     string     `json:"status"`
	Tags       []string   `json:"tags"`
	// PublishAt schedules publication. On update, omitting it keeps the
	// existing schedule; publishing the post clears it.
	PublishAt *time.Time `json:"publish_at"`
}

// ListOptions narrows the public post listing
type ListOptions struct {
	Search string
	Tag    string
	Mine   bool
}

// LikeResult reports the like state after a toggle
type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

func actingUser(ctx context.Context) (*models.User, error) {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return nil, apperr.Unauthenticatedf("no authenticated user")
	}
	return user, nil
}

// CreatePost creates a post for the authenticated user. A future publish_at
// forces draft status until the scheduler publishes it.
func (s *Service) CreatePost(ctx context.Context, input PostInput) (*models.Post, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validatePostInput(&input); err != nil {
		return nil, err
	}
	if input.PublishAt != nil && input.PublishAt.After(time.Now()) {
		input.Status = models.StatusDraft
	}

	post := &models.Post{
		Title:      input.Title,
		Content:    input.Content,
		CoverImage: input.CoverImage,
		AuthorID:   user.ID,
		AuthorName: user.Username,
		Status:     input.Status,
		Tags:       input.Tags,
		PublishAt:  input.PublishAt,
		Likes:      []int64{},
		Comments:   []models.Comment{},
	}
	if err := s.store.CreatePost(post); err != nil {
		return nil, err
	}

	s.log.Infof("Post created: %d by user %d", post.ID, user.ID)
	return post, nil
}

// GetPost returns a post by ID. Drafts are visible only to their author
// and to admins; everyone else gets not found.
func (s *Service) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.store.FindPostByID(id)
	if err != nil {
		return nil, err
	}
	if post.Status == models.StatusDraft && !canManage(ctx, post) {
		return nil, apperr.NotFoundf("post not found")
	}
	return post, nil
}

// ListPosts returns published posts newest first, or the caller's own posts
// in all statuses when opts.Mine is set.
func (s *Service) ListPosts(ctx context.Context, opts ListOptions) ([]*models.Post, error) {
	filter := models.PostFilter{
		Status: models.StatusPublished,
		Search: opts.Search,
		Tag:    opts.Tag,
	}
	if opts.Mine {
		user, err := actingUser(ctx)
		if err != nil {
			return nil, err
		}
		filter.Status = ""
		filter.AuthorID = user.ID
	}
	return s.store.ListPosts(filter)
}

// UpdatePost edits a post. Only the author or an admin may edit.
func (s *Service) UpdatePost(ctx context.Context, id int64, input PostInput) (*models.Post, error) {
	post, err := s.store.FindPostByID(id)
	if err != nil {
		return nil, err
	}
	if !canManage(ctx, post) {
		return nil, apperr.Forbiddenf("not allowed to edit this post")
	}
	if input.Status == "" {
		input.Status = post.Status
	}
	if err := validatePostInput(&input); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	post.CoverImage = input.CoverImage
	post.Status = input.Status
	post.Tags = input.Tags
	if input.PublishAt != nil {
		post.PublishAt = input.PublishAt
		if post.PublishAt.After(time.Now()) {
			post.Status = models.StatusDraft
		}
	}
	if post.Status == models.StatusPublished {
		post.PublishAt = nil
	}

	if err := s.store.UpdatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	post, err := s.store.FindPostByID(id)
	if err != nil {
		return err
	}
	if !canManage(ctx, post) {
		return apperr.Forbiddenf("not allowed to delete this post")
	}

	if err := s.store.DeletePost(id); err != nil {
		return err
	}
	s.log.Infof("Post deleted: %d", id)
	return nil
}

// ToggleLike flips the acting user's membership in the post's like set:
// present removes, absent adds. Toggling twice restores the original set.
func (s *Service) ToggleLike(ctx context.Context, postID int64) (*LikeResult, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	// Same visibility rule as GetPost: hidden drafts cannot be liked
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.store.AddLike(postID, user.ID)
	if err != nil {
		return nil, err
	}
	if !liked {
		if _, err := s.store.RemoveLike(postID, user.ID); err != nil {
			return nil, err
		}
	}

	count, err := s.store.CountLikes(postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, Likes: count}, nil
}

// AddComment appends a comment to a post in chronological order
func (s *Service) AddComment(ctx context.Context, postID int64, text string) (*models.Comment, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validationf("comment text is required")
	}

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:     postID,
		AuthorID:   user.ID,
		AuthorName: user.Username,
		Text:       text,
	}
	if err := s.store.AddComment(comment); err != nil {
		return nil, err
	}

	s.notifyCommented(post, user.Username, text)
	return comment, nil
}

// DeleteComment removes a single comment. Only the comment's author may
// delete it.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID int64) error {
	user, err := actingUser(ctx)
	if err != nil {
		return err
	}

	comment, err := s.store.FindComment(postID, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != user.ID {
		return apperr.Forbiddenf("not allowed to delete this comment")
	}

	return s.store.DeleteComment(commentID)
}

// PublishDuePosts publishes scheduled drafts whose publish time has passed
func (s *Service) PublishDuePosts() (int64, error) {
	n, err := s.store.PublishDue(time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Infof("Published %d scheduled posts", n)
	}
	return n, nil
}

// canManage reports whether the context user is the post's author or an admin
func canManage(ctx context.Context, post *models.Post) bool {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return false
	}
	return user.ID == post.AuthorID || user.IsAdmin
}

func validatePostInput(input *PostInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || strings.TrimSpace(input.Content) == "" {
		return apperr.Validationf("title and content are required")
	}
	if input.Status == "" {
		input.Status = models.StatusPublished
	}
	if input.Status != models.StatusDraft && input.Status != models.StatusPublished {
		return apperr.Validationf("status must be draft or published")
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}
	return nil
}

func (s *Service) notifyCommented(post *models.Post, commenter, text string) {
	if s.mailer == nil || post.AuthorID == 0 {
		return
	}
	go func() {
		author, err := s.store.FindUserByID(post.AuthorID)
		if err != nil {
			s.log.Debugf("Comment notification skipped, author %d: %v", post.AuthorID, err)
			return
		}
		if author.Username == commenter {
			return
		}
		if err := s.mailer.SendCommentNotification(author.Email, author.Username, post.Title, commenter, text); err != nil {
			s.log.Errorf("Failed to send comment notification to %s: %v", author.Email, err)
		}
	}()
}
