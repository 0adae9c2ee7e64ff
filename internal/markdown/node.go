// Package markdown turns Markdown source into the small closed set of node
// kinds the task walker understands. Tokenizing is delegated to goldmark.
package markdown

// Node is one of Document, Heading, ListItem, Text, CodeBlock, YAMLBlock or
// Generic.
type Node interface {
	node()
}

// Document is the root of a parsed file.
type Document struct {
	Children []Node
}

// Heading is an ATX or setext heading with its inline content flattened.
type Heading struct {
	Depth int
	Text  string
	Line  int
}

// ListItem is a list entry. Checked is nil unless the item is a checklist entry.
type ListItem struct {
	Checked  *bool
	Line     int
	Children []Node
}

// Text is one run of inline content: a paragraph or the text block of a
// tight list item, with soft and hard line breaks turned into spaces.
type Text struct {
	Value string
	Line  int
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Lang string
	Body string
	Line int
}

// YAMLBlock is the front-matter block at the top of a file.
type YAMLBlock struct {
	Body string
	Line int
}

// Generic is any other container node (lists, block quotes).
type Generic struct {
	Children []Node
}

func (*Document) node()  {}
func (*Heading) node()   {}
func (*ListItem) node()  {}
func (*Text) node()      {}
func (*CodeBlock) node() {}
func (*YAMLBlock) node() {}
func (*Generic) node()   {}

// FirstText returns the first Text run found depth-first below n, or nil.
func FirstText(n Node) *Text {
	switch v := n.(type) {
	case *Text:
		return v
	case *Document:
		return firstTextIn(v.Children)
	case *ListItem:
		return firstTextIn(v.Children)
	case *Generic:
		return firstTextIn(v.Children)
	}
	return nil
}

func firstTextIn(children []Node) *Text {
	for _, c := range children {
		if t := FirstText(c); t != nil {
			return t
		}
	}
	return nil
}
