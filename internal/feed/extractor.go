package feed

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

var (
	ErrEmptyBatch  = errors.New("extraction returned no items")
	ErrInvalidItem = errors.New("extracted item is invalid")
)

// Extractor turns a source URL into a batch of items.
type Extractor interface {
	Extract(ctx context.Context, sourceURL string) (*Batch, error)
}

// FeedExtractor extracts items from RSS, Atom and JSON feeds.
type FeedExtractor struct {
	parser *gofeed.Parser
}

func NewFeedExtractor() *FeedExtractor {
	parser := gofeed.NewParser()
	parser.UserAgent = "yomu/0.1"
	return &FeedExtractor{parser: parser}
}

func (e *FeedExtractor) Extract(ctx context.Context, sourceURL string) (*Batch, error) {
	f, err := e.parser.ParseURLWithContext(sourceURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return batchFromFeed(f, sourceURL)
}

func batchFromFeed(f *gofeed.Feed, sourceURL string) (*Batch, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = sourceURL
	}

	batch := &Batch{Title: title, Items: make([]Item, 0, len(f.Items))}
	for _, it := range f.Items {
		pub := it.Published
		if strings.TrimSpace(pub) == "" {
			pub = it.Updated
		}
		desc := it.Description
		if desc == "" {
			desc = it.Content
		}
		itemTitle := strings.TrimSpace(it.Title)
		if itemTitle == "" {
			itemTitle = "No Title"
		}
		batch.Items = append(batch.Items, Item{
			Title:       itemTitle,
			Link:        strings.TrimSpace(it.Link),
			Description: stripHTML(desc),
			PubDate:     pub,
			Source:      title,
		})
	}

	if err := ValidateBatch(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ValidateBatch rejects batches that are unusable as a whole: no items, or
// an item without a link.
func ValidateBatch(b *Batch) error {
	if b == nil || len(b.Items) == 0 {
		return ErrEmptyBatch
	}
	for i, it := range b.Items {
		if it.Link == "" {
			return fmt.Errorf("%w: item %d (%q) has no link", ErrInvalidItem, i, it.Title)
		}
	}
	return nil
}

// stripHTML reduces a feed description to its text content, decoding
// entities and collapsing whitespace.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
