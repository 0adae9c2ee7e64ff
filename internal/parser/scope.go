package parser

import "github.com/starford/taskparser/internal/tags"

// headingContext is one link of the heading chain: the tags accumulated up to
// and including the nearest heading of the given depth. Depth 0 holds tags
// scoped to the whole file body, set before any heading.
type headingContext struct {
	depth  int
	tags   tags.Map
	parent *headingContext
}

// enter returns the chain after a heading of depth carrying extra tags.
// Nodes at the same or a deeper level are discarded first.
func (h *headingContext) enter(depth int, extra tags.Map) *headingContext {
	anc := h
	for anc != nil && anc.depth >= depth {
		anc = anc.parent
	}
	base := tags.Map{}
	if anc != nil {
		base = anc.tags.Clone()
	}
	base.Merge(extra)
	return &headingContext{depth: depth, tags: base, parent: anc}
}

// extend returns the chain with extra tags added to the current heading scope.
func (h *headingContext) extend(extra tags.Map) *headingContext {
	if h == nil {
		return &headingContext{tags: extra.Clone()}
	}
	merged := h.tags.Clone()
	merged.Merge(extra)
	return &headingContext{depth: h.depth, tags: merged, parent: h.parent}
}

// Scope is the tag context in effect at one point of a document. It is a
// value: every change produces a new Scope and never affects siblings.
type Scope struct {
	folder   tags.Map // folder metadata, inherited from every ancestor
	file     tags.Map // filename date and front-matter
	internal tags.Map // reserved tags such as file
	heading  *headingContext
}

// NewScope returns the scope for file under the given folder tags.
func NewScope(file string, folder tags.Map) Scope {
	s := Scope{
		folder:   folder.Clone(),
		file:     tags.Map{},
		internal: tags.Map{tags.File: file},
	}
	if date, ok := tags.DateFromFilename(file); ok {
		s.file[tags.Date] = date
	}
	return s
}

func (s Scope) withFileTags(extra tags.Map) Scope {
	s.file = tags.Layer(s.file, extra)
	return s
}

func (s Scope) withHeading(depth int, extra tags.Map) Scope {
	s.heading = s.heading.enter(depth, extra)
	return s
}

func (s Scope) withSectionTags(extra tags.Map) Scope {
	s.heading = s.heading.extend(extra)
	return s
}

// snapshot returns the inherited tags, in increasing precedence: folder,
// file, heading chain.
func (s Scope) snapshot() tags.Map {
	var heading tags.Map
	if s.heading != nil {
		heading = s.heading.tags
	}
	return tags.Layer(s.folder, s.file, heading)
}

// File returns the vault path of the file being walked.
func (s Scope) File() string {
	return s.internal[tags.File]
}
