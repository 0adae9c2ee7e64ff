package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Parser converts Markdown source into a Document. It is safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// NewParser returns a Parser with GitHub task list support enabled.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(goldmark.WithExtensions(extension.TaskList)),
	}
}

// Parse parses src. Front-matter, when present, becomes the first child as a
// YAMLBlock. Line numbers are 1-based and refer to src, front-matter included.
func (p *Parser) Parse(src []byte) *Document {
	fm, bodyStart := splitFrontmatter(src)
	body := src[bodyStart:]

	c := &converter{
		src:   body,
		base:  bodyStart,
		lines: lineStarts(src),
	}

	doc := &Document{}
	if fm != nil {
		doc.Children = append(doc.Children, &YAMLBlock{Body: string(fm), Line: 1})
	}
	root := p.md.Parser().Parse(text.NewReader(body))
	doc.Children = append(doc.Children, c.children(root)...)
	return doc
}

type converter struct {
	src   []byte
	base  int
	lines []int
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// line maps an offset into the body to a 1-based line number of the file.
func (c *converter) line(offset int) int {
	abs := c.base + offset
	return sort.Search(len(c.lines), func(i int) bool { return c.lines[i] > abs })
}

// blockLine returns the line of the first source segment found at or below n.
func (c *converter) blockLine(n ast.Node) int {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return c.line(lines.At(0).Start)
		}
	}
	if t, ok := n.(*ast.Text); ok {
		return c.line(t.Segment.Start)
	}
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if l := c.blockLine(ch); l > 0 {
			return l
		}
	}
	return 0
}

func (c *converter) children(n ast.Node) []Node {
	var out []Node
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if m := c.convert(ch); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (c *converter) convert(n ast.Node) Node {
	switch v := n.(type) {
	case *ast.Heading:
		return &Heading{Depth: v.Level, Text: strings.TrimSpace(c.inline(v)), Line: c.blockLine(v)}
	case *ast.ListItem:
		return &ListItem{Checked: checkedState(v), Line: c.blockLine(v), Children: c.children(v)}
	case *ast.Paragraph, *ast.TextBlock:
		value := strings.TrimSpace(c.inline(n))
		if value == "" {
			return nil
		}
		return &Text{Value: value, Line: c.blockLine(n)}
	case *ast.FencedCodeBlock:
		return &CodeBlock{Lang: string(v.Language(c.src)), Body: c.rawLines(v), Line: c.fenceLine(v)}
	case *ast.CodeBlock:
		return &CodeBlock{Body: c.rawLines(v), Line: c.blockLine(v)}
	case *ast.HTMLBlock, *ast.ThematicBreak:
		return nil
	}
	if n.HasChildren() {
		return &Generic{Children: c.children(n)}
	}
	return nil
}

// fenceLine is the line of the opening fence, one above the first content line.
func (c *converter) fenceLine(n *ast.FencedCodeBlock) int {
	if n.Info != nil {
		return c.line(n.Info.Segment.Start)
	}
	if l := c.blockLine(n); l > 1 {
		return l - 1
	}
	return 0
}

func (c *converter) rawLines(n ast.Node) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return b.String()
}

// inline flattens the inline content of n into plain text.
func (c *converter) inline(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := child.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(c.src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(c.src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML, *extast.TaskCheckBox:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// checkedState reports the checkbox state of a task list item, or nil when
// the item has no checkbox.
func checkedState(li *ast.ListItem) *bool {
	first := li.FirstChild()
	if first == nil {
		return nil
	}
	box, ok := first.FirstChild().(*extast.TaskCheckBox)
	if !ok {
		return nil
	}
	checked := box.IsChecked
	return &checked
}
