// Package extract pulls curated entries out of an awesome-list README.
package extract

import (
	"strings"

	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/markdown"
)

// Candidate is an entry as found in a document, before any timestamp is known.
type Candidate struct {
	Name        string
	Source      string
	Description string
}

// Extract returns one candidate per list item that links somewhere outside
// the document, in document order.
//
// Items whose link is a same-document anchor are table-of-contents lines and
// are dropped silently. Items with no link at all are dropped with a warning.
func Extract(src []byte, log logger.Logger) []Candidate {
	doc := markdown.Parse(src)

	var out []Candidate
	for n := range markdown.Walk(doc) {
		item, ok := n.(*markdown.ListItem)
		if !ok {
			continue
		}
		c, ok := fromListItem(item, log)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func fromListItem(item *markdown.ListItem, log logger.Logger) (Candidate, bool) {
	block := markdown.First(item, isTextBlock)
	if block == nil {
		block = item
	}

	found := markdown.First(block, func(n markdown.Node) bool {
		_, ok := n.(*markdown.Link)
		return ok
	})
	if found == nil {
		log.Warn("list item without link, ignoring",
			logger.String("item", truncate(markdown.PlainText(item), 80)))
		return Candidate{}, false
	}
	link := found.(*markdown.Link)

	if strings.HasPrefix(link.Destination, "#") {
		return Candidate{}, false
	}

	return Candidate{
		Name:        markdown.PlainText(link),
		Source:      link.Destination,
		Description: markdown.PlainText(item),
	}, true
}

func isTextBlock(n markdown.Node) bool {
	switch n.(type) {
	case *markdown.BlockText, *markdown.Paragraph:
		return true
	default:
		return false
	}
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
