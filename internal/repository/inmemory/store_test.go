package inmemory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/models"
)

// newTestStore creates a store with one user and one published post
func newTestStore(t *testing.T) (*Store, *models.User, *models.Post) {
	store := New()

	user := &models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, store.CreateUser(user))

	post := &models.Post{
		Title:    "First Post",
		Content:  "<p>hello</p>",
		AuthorID: user.ID,
		Status:   models.StatusPublished,
		Tags:     []string{"go"},
	}
	require.NoError(t, store.CreatePost(post))
	return store, user, post
}

func TestStore_DuplicateUser(t *testing.T) {
	store, _, _ := newTestStore(t)

	err := store.CreateUser(&models.User{Username: "other", Email: "alice@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	err = store.CreateUser(&models.User{Username: "alice", Email: "new@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// The first account is unaffected
	user, err := store.FindUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestStore_LikeMembership(t *testing.T) {
	store, user, post := newTestStore(t)

	added, err := store.AddLike(post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, added)

	// Second add is a no-op, membership stays unique
	added, err = store.AddLike(post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, added)

	count, err := store.CountLikes(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err := store.RemoveLike(post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.RemoveLike(post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_CommentOrder(t *testing.T) {
	store, user, post := newTestStore(t)

	for _, text := range []string{"first", "second", "third"} {
		err := store.AddComment(&models.Comment{PostID: post.ID, AuthorID: user.ID, Text: text})
		require.NoError(t, err)
	}

	loaded, err := store.FindPostByID(post.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Comments, 3)
	assert.Equal(t, "first", loaded.Comments[0].Text)
	assert.Equal(t, "second", loaded.Comments[1].Text)
	assert.Equal(t, "third", loaded.Comments[2].Text)
	assert.Equal(t, "alice", loaded.Comments[0].AuthorName)
}

func TestStore_ListPostsFilters(t *testing.T) {
	store, user, _ := newTestStore(t)

	draft := &models.Post{Title: "Secret", Content: "wip", AuthorID: user.ID, Status: models.StatusDraft}
	require.NoError(t, store.CreatePost(draft))
	tagged := &models.Post{Title: "Tagged", Content: "text", AuthorID: user.ID, Status: models.StatusPublished, Tags: []string{"news"}}
	require.NoError(t, store.CreatePost(tagged))

	published, err := store.ListPosts(models.PostFilter{Status: models.StatusPublished})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	byTag, err := store.ListPosts(models.PostFilter{Tag: "news"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Tagged", byTag[0].Title)

	bySearch, err := store.ListPosts(models.PostFilter{Search: "secret"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Secret", bySearch[0].Title)

	mine, err := store.ListPosts(models.PostFilter{AuthorID: user.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestStore_PublishDue(t *testing.T) {
	store, user, _ := newTestStore(t)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	due := &models.Post{Title: "Due", Content: "x", AuthorID: user.ID, Status: models.StatusDraft, PublishAt: &past}
	notDue := &models.Post{Title: "Later", Content: "x", AuthorID: user.ID, Status: models.StatusDraft, PublishAt: &future}
	require.NoError(t, store.CreatePost(due))
	require.NoError(t, store.CreatePost(notDue))

	n, err := store.PublishDue(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	loaded, err := store.FindPostByID(due.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, loaded.Status)
	assert.Nil(t, loaded.PublishAt)

	loaded, err = store.FindPostByID(notDue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, loaded.Status)
}

func TestStore_DeleteUserCascades(t *testing.T) {
	store, user, post := newTestStore(t)

	other := &models.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, store.CreateUser(other))
	_, err := store.AddLike(post.ID, other.ID)
	require.NoError(t, err)
	require.NoError(t, store.AddComment(&models.Comment{PostID: post.ID, AuthorID: other.ID, Text: "hi"}))

	require.NoError(t, store.DeleteUser(other.ID))

	loaded, err := store.FindPostByID(post.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Likes)
	assert.Empty(t, loaded.Comments)

	// Deleting the author removes their posts too
	require.NoError(t, store.DeleteUser(user.ID))
	_, err = store.FindPostByID(post.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestStore_Stats(t *testing.T) {
	store, user, post := newTestStore(t)

	_, err := store.AddLike(post.ID, user.ID)
	require.NoError(t, err)
	require.NoError(t, store.AddComment(&models.Comment{PostID: post.ID, AuthorID: user.ID, Text: "hi"}))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalPosts)
	assert.Equal(t, int64(1), stats.TotalComments)
	assert.Equal(t, int64(1), stats.TotalLikes)
}
