// Package markdown turns a Markdown document into a small, closed node model
// and offers stack-based traversal over it.
//
// Only the node kinds below exist. Extraction code switches over them and
// never has to probe an arbitrary tree for fields.
package markdown

import (
	"iter"
	"strings"
)

// Node is implemented only by the types in this package.
type Node interface {
	Children() []Node
	appendChild(Node)
}

type container struct {
	children []Node
}

func (c *container) Children() []Node   { return c.children }
func (c *container) appendChild(n Node) { c.children = append(c.children, n) }

type (
	// Document is the root of a parsed file.
	Document struct{ container }

	Heading struct {
		container
		Level int
	}

	Paragraph struct{ container }

	// BlockText is the inline content of a tight list item.
	BlockText struct{ container }

	List struct {
		container
		Ordered bool
	}

	ListItem struct{ container }

	Link struct {
		container
		Destination string
	}

	Image struct {
		container
		Destination string
	}

	// Code is an inline code span. Its children are Text nodes.
	Code struct{ container }

	// Text is a leaf holding literal text.
	Text struct {
		container
		Value string
	}

	// Other stands for every construct extraction does not care about
	// (emphasis, tables, HTML, code blocks, ...). Inline children are kept.
	Other struct{ container }
)

// Walk yields root and every node below it in document order (pre-order).
func Walk(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(root, func(n Node) (bool, bool) {
			return yield(n), true
		})
	}
}

// walk drives an explicit stack. visit returns (continue, descend).
func walk(root Node, visit func(Node) (bool, bool)) {
	if root == nil {
		return
	}
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		more, descend := visit(n)
		if !more {
			return
		}
		if !descend {
			continue
		}
		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// First returns the first node under root (root included) for which match
// returns true.
func First(root Node, match func(Node) bool) Node {
	for n := range Walk(root) {
		if match(n) {
			return n
		}
	}
	return nil
}

// PlainText returns the visible text under n with whitespace collapsed.
// Image alt text is skipped.
func PlainText(n Node) string {
	var b strings.Builder
	walk(n, func(n Node) (bool, bool) {
		switch v := n.(type) {
		case *Image:
			return true, false
		case *Text:
			b.WriteString(v.Value)
		case *Paragraph, *BlockText, *Heading, *ListItem, *List:
			b.WriteByte(' ')
		}
		return true, true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
