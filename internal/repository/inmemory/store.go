// Package inmemory implements the service store in process memory.
// Used for local development and tests.
package inmemory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/models"
)

// Store implements the service.Store interface in memory
type Store struct {
	mu            sync.RWMutex
	users         map[int64]models.User
	posts         map[int64]models.Post
	likes         map[int64][]int64          // postID -> user IDs in like order
	comments      map[int64][]models.Comment // postID -> comments in insertion order
	nextUserID    int64
	nextPostID    int64
	nextCommentID int64
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		users:    make(map[int64]models.User),
		posts:    make(map[int64]models.Post),
		likes:    make(map[int64][]int64),
		comments: make(map[int64][]models.Comment),
	}
}

// === Users ===

func (s *Store) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return apperr.Conflictf("user with this email already exists")
		}
		if existing.Username == user.Username {
			return apperr.Conflictf("username is already taken")
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *Store) FindUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (s *Store) FindUserByID(id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	u := user
	return &u, nil
}

func (s *Store) FindUserByGoogleID(googleID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.GoogleID != "" && user.GoogleID == googleID {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (s *Store) UpdateUserProfile(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return apperr.NotFoundf("user not found")
	}
	for id, existing := range s.users {
		if id != user.ID && existing.Username == user.Username {
			return apperr.Conflictf("username is already taken")
		}
	}

	stored.Username = user.Username
	stored.Bio = user.Bio
	stored.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) SetAdminByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, user := range s.users {
		if user.Email == email {
			user.IsAdmin = true
			user.UpdatedAt = time.Now().UTC()
			s.users[id] = user
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (s *Store) ListUsers() ([]*models.User, error) {
	return s.listUsers(0)
}

func (s *Store) RecentUsers(limit int) ([]*models.User, error) {
	return s.listUsers(limit)
}

func (s *Store) listUsers(limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		u := user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apperr.NotFoundf("user not found")
	}
	delete(s.users, id)

	// Cascade: posts, likes and comments owned by the user
	for postID, post := range s.posts {
		if post.AuthorID == id {
			delete(s.posts, postID)
			delete(s.likes, postID)
			delete(s.comments, postID)
		}
	}
	for postID := range s.likes {
		s.likes[postID] = removeID(s.likes[postID], id)
	}
	for postID, comments := range s.comments {
		kept := comments[:0]
		for _, c := range comments {
			if c.AuthorID != id {
				kept = append(kept, c)
			}
		}
		s.comments[postID] = kept
	}
	return nil
}

// === Posts ===

func (s *Store) CreatePost(post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPostID++
	post.ID = s.nextPostID
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	s.posts[post.ID] = *post
	return nil
}

func (s *Store) FindPostByID(id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, apperr.NotFoundf("post not found")
	}
	return s.withRelations(post), nil
}

func (s *Store) ListPosts(filter models.PostFilter) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posts []*models.Post
	for _, post := range s.posts {
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		if filter.AuthorID != 0 && post.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Search != "" && !matchesSearch(post, filter.Search) {
			continue
		}
		if filter.Tag != "" && !containsTag(post.Tags, filter.Tag) {
			continue
		}
		posts = append(posts, s.withRelations(post))
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}
	return posts, nil
}

func (s *Store) RecentPosts(limit int) ([]*models.Post, error) {
	return s.ListPosts(models.PostFilter{Limit: limit})
}

func (s *Store) UpdatePost(post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return apperr.NotFoundf("post not found")
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.CoverImage = post.CoverImage
	stored.Status = post.Status
	stored.Tags = post.Tags
	stored.PublishAt = post.PublishAt
	stored.UpdatedAt = time.Now().UTC()
	s.posts[post.ID] = stored
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) DeletePost(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return apperr.NotFoundf("post not found")
	}
	delete(s.posts, id)
	delete(s.likes, id)
	delete(s.comments, id)
	return nil
}

func (s *Store) PublishDue(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var published int64
	for id, post := range s.posts {
		if post.Status == models.StatusDraft && post.PublishAt != nil && !post.PublishAt.After(now) {
			post.Status = models.StatusPublished
			post.PublishAt = nil
			post.UpdatedAt = now.UTC()
			s.posts[id] = post
			published++
		}
	}
	return published, nil
}

// === Likes ===

func (s *Store) AddLike(postID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.likes[postID] {
		if id == userID {
			return false, nil
		}
	}
	s.likes[postID] = append(s.likes[postID], userID)
	return true, nil
}

func (s *Store) RemoveLike(postID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.likes[postID])
	s.likes[postID] = removeID(s.likes[postID], userID)
	return len(s.likes[postID]) < before, nil
}

func (s *Store) CountLikes(postID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.likes[postID])), nil
}

// === Comments ===

func (s *Store) AddComment(comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return apperr.NotFoundf("post not found")
	}

	s.nextCommentID++
	comment.ID = s.nextCommentID
	comment.CreatedAt = time.Now().UTC()
	s.comments[comment.PostID] = append(s.comments[comment.PostID], *comment)
	return nil
}

func (s *Store) FindComment(postID, commentID int64) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, comment := range s.comments[postID] {
		if comment.ID == commentID {
			c := comment
			return &c, nil
		}
	}
	return nil, apperr.NotFoundf("comment not found")
}

func (s *Store) DeleteComment(commentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for postID, comments := range s.comments {
		for i, comment := range comments {
			if comment.ID == commentID {
				s.comments[postID] = append(comments[:i:i], comments[i+1:]...)
				return nil
			}
		}
	}
	return apperr.NotFoundf("comment not found")
}

// === Stats ===

func (s *Store) Stats() (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.Stats{
		TotalUsers: int64(len(s.users)),
		TotalPosts: int64(len(s.posts)),
	}
	for _, comments := range s.comments {
		stats.TotalComments += int64(len(comments))
	}
	for _, likes := range s.likes {
		stats.TotalLikes += int64(len(likes))
	}
	return stats, nil
}

func (s *Store) withRelations(post models.Post) *models.Post {
	p := post
	if author, ok := s.users[post.AuthorID]; ok {
		p.AuthorName = author.Username
	}
	p.Likes = append([]int64{}, s.likes[post.ID]...)
	p.Comments = append([]models.Comment{}, s.comments[post.ID]...)
	for i := range p.Comments {
		if author, ok := s.users[p.Comments[i].AuthorID]; ok {
			p.Comments[i].AuthorName = author.Username
		}
	}
	return &p
}

func matchesSearch(post models.Post, search string) bool {
	search = strings.ToLower(search)
	if strings.Contains(strings.ToLower(post.Title), search) ||
		strings.Contains(strings.ToLower(post.Content), search) {
		return true
	}
	for _, tag := range post.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
