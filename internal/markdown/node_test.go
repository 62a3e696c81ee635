package markdown

import (
	"strings"
	"testing"
)

func TestParseListStructure(t *testing.T) {
	src := []byte("# Title\n\n- [Alpha](https://alpha.dev) - first\n- plain item\n\n1. [Beta](#beta)\n")
	doc := Parse(src)

	var lists, items, links int
	var ordered bool
	for n := range Walk(doc) {
		switch v := n.(type) {
		case *List:
			lists++
			if v.Ordered {
				ordered = true
			}
		case *ListItem:
			items++
		case *Link:
			links++
		}
	}

	if lists != 2 {
		t.Errorf("lists = %d, want 2", lists)
	}
	if items != 3 {
		t.Errorf("list items = %d, want 3", items)
	}
	if links != 2 {
		t.Errorf("links = %d, want 2", links)
	}
	if !ordered {
		t.Error("second list should be ordered")
	}
}

func TestWalkDocumentOrder(t *testing.T) {
	doc := Parse([]byte("- [one](https://1.example)\n- [two](https://2.example)\n- [three](https://3.example)\n"))

	var got []string
	for n := range Walk(doc) {
		if l, ok := n.(*Link); ok {
			got = append(got, l.Destination)
		}
	}

	want := []string{"https://1.example", "https://2.example", "https://3.example"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Walk() link order = %v, want %v", got, want)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	doc := Parse([]byte("- a\n- b\n- c\n"))

	seen := 0
	for range Walk(doc) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("iteration continued after break: %d", seen)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "link and trailing text",
			src:  "- [Synth](https://github.com/getsynth/synth) - Open Source test data generator.",
			want: "Synth - Open Source test data generator.",
		},
		{
			name: "emphasis and code",
			src:  "- [x](https://x.dev) is *really* `fast`",
			want: "x is really fast",
		},
		{
			name: "image alt text skipped",
			src:  "- [![badge](https://img.shields.io/x.svg)](https://x.dev) tool",
			want: "tool",
		},
		{
			name: "soft line break becomes a space",
			src:  "- first line\n  second line",
			want: "first line second line",
		},
		{
			name: "entity decoded",
			src:  "- Q&amp;A",
			want: "Q&A",
		},
		{
			name: "backslash escapes resolved outside code",
			src:  "- a\\*b `c\\*d`",
			want: "a*b c\\*d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse([]byte(tt.src))
			item := First(doc, func(n Node) bool {
				_, ok := n.(*ListItem)
				return ok
			})
			if item == nil {
				t.Fatal("no list item parsed")
			}
			if got := PlainText(item); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalkDeepTreeWithoutRecursion(t *testing.T) {
	const depth = 200000

	root := &Document{}
	var parent Node = root
	for i := 0; i < depth; i++ {
		child := &ListItem{}
		parent.appendChild(child)
		parent = child
	}
	parent.appendChild(&Text{Value: "leaf"})

	count := 0
	for range Walk(root) {
		count++
	}
	if count != depth+2 {
		t.Errorf("Walk() visited %d nodes, want %d", count, depth+2)
	}
	if got := PlainText(root); got != "leaf" {
		t.Errorf("PlainText() = %q, want leaf", got)
	}
}
