// Package newsletter assembles new items from every source into one
// rendered newsletter and hands it to a deliverer.
package newsletter

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"yomu/internal/feed"
)

//go:embed newsletter.html.tmpl
var newsletterTemplate string

// Section groups the new items of one source. URL is empty for sections
// whose origin is unknown; their header is rendered without a link.
type Section struct {
	Name  string
	URL   string
	Items []feed.Item
}

type Renderer struct {
	tmpl           *template.Template
	maxDescription int
}

func NewRenderer(maxDescription int) (*Renderer, error) {
	tmpl, err := template.New("newsletter").Parse(newsletterTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing newsletter template: %w", err)
	}
	return &Renderer{tmpl: tmpl, maxDescription: maxDescription}, nil
}

type articleView struct {
	Title       string
	Link        string
	Description string
	Date        string
}

type sectionView struct {
	Name     string
	URL      string
	Articles []articleView
}

// Render produces the HTML document. Sections without items are skipped.
func (r *Renderer) Render(sections []Section) (string, error) {
	data := struct{ Sections []sectionView }{}
	for _, s := range sections {
		if len(s.Items) == 0 {
			continue
		}
		view := sectionView{Name: s.Name, URL: s.URL}
		for _, it := range s.Items {
			title := it.Title
			if title == "" {
				title = "No Title"
			}
			view.Articles = append(view.Articles, articleView{
				Title:       title,
				Link:        it.Link,
				Description: Truncate(it.Description, r.maxDescription),
				Date:        feed.FormatReadableDate(it.PubDate),
			})
		}
		data.Sections = append(data.Sections, view)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering newsletter: %w", err)
	}
	return buf.String(), nil
}

// Truncate shortens text to at most max runes including a trailing "...",
// cutting at the last word boundary when there is one.
func Truncate(text string, max int) string {
	if text == "" || max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	const ellipsis = "..."
	if max <= len(ellipsis) {
		return ellipsis[:max]
	}

	cut := string(runes[:max-len(ellipsis)])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + ellipsis
}
