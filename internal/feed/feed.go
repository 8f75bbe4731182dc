package feed

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/vtarasov/blog-service/internal/models"
)

// Builder renders the published posts as an RSS 2.0 document
type Builder struct {
	title   string
	siteURL string
}

// NewBuilder creates a feed builder for the given site
func NewBuilder(title, siteURL string) *Builder {
	return &Builder{title: title, siteURL: siteURL}
}

// Build returns the RSS XML for the given posts. Posts are expected to be
// published and already sorted newest first.
func (b *Builder) Build(posts []*models.Post) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")

	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(b.title)
	channel.CreateElement("link").SetText(b.siteURL)
	channel.CreateElement("description").SetText(fmt.Sprintf("Latest posts from %s", b.title))
	channel.CreateElement("lastBuildDate").SetText(time.Now().UTC().Format(time.RFC1123Z))

	for _, post := range posts {
		item := channel.CreateElement("item")
		item.CreateElement("title").SetText(post.Title)
		item.CreateElement("link").SetText(fmt.Sprintf("%s/posts/%d", b.siteURL, post.ID))
		item.CreateElement("guid").SetText(fmt.Sprintf("%s/posts/%d", b.siteURL, post.ID))
		item.CreateElement("author").SetText(post.AuthorName)
		item.CreateElement("description").SetText(post.Content)
		item.CreateElement("pubDate").SetText(post.CreatedAt.UTC().Format(time.RFC1123Z))
		for _, tag := range post.Tags {
			item.CreateElement("category").SetText(tag)
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render feed: %w", err)
	}
	return out, nil
}
