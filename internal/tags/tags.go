// Package tags implements the tag map carried by every parsed item and the
// primitives that fill it: inline #name(value) annotations, YAML mappings and
// dates embedded in file names.
package tags

// Reserved tag names set by the parser itself.
const (
	File    = "file"
	Line    = "line"
	Checked = "checked"
	Hours   = "hours"
	Text    = "text"
	Date    = "date"
)

// Map maps a tag name to its value. Names are case-sensitive and the last
// write wins.
type Map map[string]string

// Clone returns an independent copy of m. A nil map clones to an empty one.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge copies every entry of src into m, overwriting existing keys.
func (m Map) Merge(src Map) {
	for k, v := range src {
		m[k] = v
	}
}

// Get returns the value of name and whether it is present and non-empty.
func (m Map) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok && v != ""
}

// IsNull reports whether name is absent or holds an empty value.
func (m Map) IsNull(name string) bool {
	_, ok := m.Get(name)
	return !ok
}

// Layer returns a new map holding the entries of every layer, later layers
// overriding earlier ones.
func Layer(layers ...Map) Map {
	out := Map{}
	for _, l := range layers {
		out.Merge(l)
	}
	return out
}
