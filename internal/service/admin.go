package service

import (
	"github.com/vtarasov/blog-service/internal/models"
)

const recentActivityLimit = 5

// ListUsers returns all users for the admin view
func (s *Service) ListUsers() ([]*models.User, error) {
	return s.store.ListUsers()
}

// ListAllPosts returns every post regardless of status for the admin view
func (s *Service) ListAllPosts() ([]*models.Post, error) {
	return s.store.ListPosts(models.PostFilter{})
}

// AdminDeleteUser removes a user and everything they own
func (s *Service) AdminDeleteUser(id int64) error {
	if err := s.store.DeleteUser(id); err != nil {
		return err
	}
	s.log.Infof("User deleted by admin: %d", id)
	return nil
}

// AdminDeletePost removes any post
func (s *Service) AdminDeletePost(id int64) error {
	if err := s.store.DeletePost(id); err != nil {
		return err
	}
	s.log.Infof("Post deleted by admin: %d", id)
	return nil
}

// PromoteAdmin grants the admin flag to the user with the given email
func (s *Service) PromoteAdmin(email string) (*models.User, error) {
	user, err := s.store.SetAdminByEmail(email)
	if err != nil {
		return nil, err
	}
	s.log.Infof("User promoted to admin: %s", email)
	return user, nil
}

// Stats returns aggregate totals for the admin dashboard
func (s *Service) Stats() (*models.Stats, error) {
	return s.store.Stats()
}

// RecentActivity returns the newest users and posts for the admin dashboard
func (s *Service) RecentActivity() (*models.RecentActivity, error) {
	users, err := s.store.RecentUsers(recentActivityLimit)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.RecentPosts(recentActivityLimit)
	if err != nil {
		return nil, err
	}
	return &models.RecentActivity{RecentUsers: users, RecentPosts: posts}, nil
}
