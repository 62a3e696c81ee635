// Package domain holds the reader-side view of a published snapshot: entries
// flattened with their list, grouped into days, paged and searched.
package domain

import (
	"cmp"
	"slices"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// Item is one entry together with the list it belongs to. Time is the day
// the entry was first seen (UTC midnight).
type Item struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	ListName    string    `json:"list_name"`
	ListSource  string    `json:"list_source"`
	Time        time.Time `json:"time"`
}

// Day groups the items first seen on one date.
type Day struct {
	Items []Item    `json:"items"`
	Date  time.Time `json:"date"`
}

// ListItems converts the entries of one list. Entries without a timestamp
// are dropped.
func ListItems(l snapshot.List) []Item {
	items := make([]Item, 0, len(l.Entries))
	for _, e := range l.Entries {
		if e.FirstSeen.IsZero() {
			continue
		}
		items = append(items, Item{
			Name:        e.Name,
			Description: e.Description,
			Source:      e.Source,
			ListName:    l.Name,
			ListSource:  l.Source,
			Time:        snapshot.Date(e.FirstSeen.Time()).Time(),
		})
	}
	return items
}

// Flatten returns every item of s, newest first.
func Flatten(s snapshot.Snapshot) []Item {
	var items []Item
	for _, l := range s.Lists {
		items = append(items, ListItems(l)...)
	}
	SortNewestFirst(items)
	return items
}

// SortNewestFirst orders by day descending, then list and entry name.
func SortNewestFirst(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Or(
			b.Time.Compare(a.Time),
			cmp.Compare(a.ListName, b.ListName),
			cmp.Compare(a.Name, b.Name),
		)
	})
}

// Timeline groups items by day, newest day first. Within a day items keep
// their relative order.
func Timeline(items []Item) []Day {
	sorted := slices.Clone(items)
	SortNewestFirst(sorted)

	var days []Day
	for _, it := range sorted {
		if n := len(days); n > 0 && days[n-1].Date.Equal(it.Time) {
			days[n-1].Items = append(days[n-1].Items, it)
			continue
		}
		days = append(days, Day{Date: it.Time, Items: []Item{it}})
	}
	return days
}

// ListDay presents a whole list as a single day dated by its newest item.
// An empty list is dated now.
func ListDay(l snapshot.List, now time.Time) Day {
	items := ListItems(l)
	SortNewestFirst(items)
	if len(items) == 0 {
		return Day{Items: []Item{}, Date: now}
	}
	return Day{Items: items, Date: items[0].Time}
}
