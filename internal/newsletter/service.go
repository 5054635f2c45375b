package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yomu/internal/delivery"
	"yomu/internal/feed"
)

var (
	ErrNoSources  = errors.New("no sources provided")
	ErrNoArticles = errors.New("no new articles")
)

type SourceProcessor interface {
	ProcessSource(ctx context.Context, sourceURL string) (*feed.Result, error)
}

type Service struct {
	processor    SourceProcessor
	renderer     *Renderer
	deliverer    delivery.Deliverer
	maxPerSource int
	now          func() time.Time
}

func NewService(processor SourceProcessor, renderer *Renderer, deliverer delivery.Deliverer, maxPerSource int) *Service {
	return &Service{
		processor:    processor,
		renderer:     renderer,
		deliverer:    deliverer,
		maxPerSource: maxPerSource,
		now:          time.Now,
	}
}

// Send runs one delivery pass: every source is processed in order, and the
// new items are rendered and delivered to recipient.
func (s *Service) Send(ctx context.Context, recipient string, sources []string) error {
	logger := slog.With("recipient", recipient)
	if len(sources) == 0 {
		logger.Info("No sources provided")
		return ErrNoSources
	}

	sections := s.Collect(ctx, sources)
	if len(sections) == 0 {
		logger.Info("No new articles found")
		return ErrNoArticles
	}

	body, err := s.renderer.Render(sections)
	if err != nil {
		return err
	}

	msg := delivery.Message{
		To:      recipient,
		Subject: "Your Newsletter - " + s.now().Format("January 02, 2006"),
		HTML:    body,
	}
	if err := s.deliverer.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("delivering newsletter: %w", err)
	}

	logger.Info("Newsletter sent", "sections", len(sections))
	return nil
}

// Collect processes sources sequentially. A failing source is logged and
// contributes nothing; sources without new items are omitted.
func (s *Service) Collect(ctx context.Context, sources []string) []Section {
	var sections []Section
	for _, sourceURL := range sources {
		if ctx.Err() != nil {
			break
		}
		res, err := s.processor.ProcessSource(ctx, sourceURL)
		if err != nil {
			slog.Warn("Failed to process source", "source", sourceURL, "error", err)
			continue
		}
		if len(res.Items) == 0 {
			continue
		}

		items := res.Items
		if s.maxPerSource > 0 && len(items) > s.maxPerSource {
			slog.Info("Limited source items", "source", sourceURL,
				"found", len(items), "max_articles_per_source", s.maxPerSource)
			items = items[:s.maxPerSource]
		}

		name := res.Title
		if name == "" {
			name = sourceURL
		}
		sections = append(sections, Section{Name: name, URL: sourceURL, Items: items})
	}
	return sections
}
