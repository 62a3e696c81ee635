package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Tables and strikethrough only: task lists would read "[x](url)" as a
// checkbox and linkify would turn bare URLs into links.
var md = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

// Parse converts src into the closed node model.
func Parse(src []byte) *Document {
	root := md.Parser().Parse(text.NewReader(src))
	doc := &Document{}

	type frame struct {
		src ast.Node
		dst Node
	}
	stack := []frame{{src: root, dst: doc}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for c := f.src.FirstChild(); c != nil; c = c.NextSibling() {
			n := convert(c, src)
			f.dst.appendChild(n)
			stack = append(stack, frame{src: c, dst: n})
		}
	}
	return doc
}

// convert maps one goldmark node to its counterpart, without children.
func convert(n ast.Node, src []byte) Node {
	switch v := n.(type) {
	case *ast.Heading:
		return &Heading{Level: v.Level}
	case *ast.Paragraph:
		return &Paragraph{}
	case *ast.TextBlock:
		return &BlockText{}
	case *ast.List:
		return &List{Ordered: v.IsOrdered()}
	case *ast.ListItem:
		return &ListItem{}
	case *ast.Link:
		return &Link{Destination: string(v.Destination)}
	case *ast.AutoLink:
		l := &Link{Destination: string(v.URL(src))}
		l.appendChild(&Text{Value: string(v.Label(src))})
		return l
	case *ast.Image:
		return &Image{Destination: string(v.Destination)}
	case *ast.CodeSpan:
		return &Code{}
	case *ast.Text:
		raw := v.Segment.Value(src)
		value := string(raw)
		if _, inCode := n.Parent().(*ast.CodeSpan); !inCode {
			value = resolve(raw)
		}
		if v.SoftLineBreak() || v.HardLineBreak() {
			value += " "
		}
		return &Text{Value: value}
	case *ast.String:
		if v.IsCode() {
			return &Text{Value: string(v.Value)}
		}
		return &Text{Value: resolve(v.Value)}
	default:
		return &Other{}
	}
}

// resolve applies backslash escapes and character references, as the
// goldmark HTML renderer does for text.
func resolve(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}
