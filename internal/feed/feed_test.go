package feed

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtarasov/blog-service/internal/models"
)

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("My Blog", "http://blog.test")
	posts := []*models.Post{
		{
			ID:         2,
			Title:      "Second",
			Content:    "<p>two</p>",
			AuthorName: "alice",
			Tags:       []string{"go", "web"},
			CreatedAt:  time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:         1,
			Title:      "First",
			Content:    "<p>one</p>",
			AuthorName: "bob",
			CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	out, err := b.Build(posts)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	channel := doc.FindElement("//rss/channel")
	require.NotNil(t, channel)
	assert.Equal(t, "My Blog", channel.SelectElement("title").Text())

	items := doc.FindElements("//rss/channel/item")
	require.Len(t, items, 2)
	assert.Equal(t, "Second", items[0].SelectElement("title").Text())
	assert.Equal(t, "http://blog.test/posts/2", items[0].SelectElement("link").Text())
	assert.Equal(t, "First", items[1].SelectElement("title").Text())

	categories := items[0].SelectElements("category")
	require.Len(t, categories, 2)
	assert.Equal(t, "go", categories[0].Text())
}

func TestBuilder_EmptyFeed(t *testing.T) {
	b := NewBuilder("My Blog", "http://blog.test")

	out, err := b.Build(nil)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Empty(t, doc.FindElements("//rss/channel/item"))
}
