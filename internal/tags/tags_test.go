package tags

import "testing"

func TestExtract_StripsAnnotations(t *testing.T) {
	m := Map{}
	got := Extract("Buy milk #done #priority(high)", m)
	if got != "Buy milk" {
		t.Errorf("text = %q, want %q", got, "Buy milk")
	}
	if m["done"] != "true" {
		t.Errorf("done = %q, want true", m["done"])
	}
	if m["priority"] != "high" {
		t.Errorf("priority = %q, want high", m["priority"])
	}
}

func TestExtract_LastOccurrenceWins(t *testing.T) {
	m := Map{}
	Extract("#x(1) middle #x(2)", m)
	if m["x"] != "2" {
		t.Errorf("x = %q, want 2", m["x"])
	}
}

func TestExtract_NormalizesWhitespace(t *testing.T) {
	m := Map{}
	got := Extract("  call\n  the   #who(bank)  today\t", m)
	if got != "call the today" {
		t.Errorf("text = %q", got)
	}
	if m["who"] != "bank" {
		t.Errorf("who = %q", m["who"])
	}
}

func TestExtract_ValueWithCommaIsNotAValue(t *testing.T) {
	m := Map{}
	got := Extract("pick #fruit(a,b)", m)
	if m["fruit"] != "true" {
		t.Errorf("fruit = %q, want true", m["fruit"])
	}
	if got != "pick (a,b)" {
		t.Errorf("text = %q", got)
	}
}

func TestExtract_NoTags(t *testing.T) {
	m := Map{}
	if got := Extract("plain text", m); got != "plain text" {
		t.Errorf("text = %q", got)
	}
	if len(m) != 0 {
		t.Errorf("unexpected tags %v", m)
	}
}

func TestMap_CloneIsIndependent(t *testing.T) {
	a := Map{"x": "1"}
	b := a.Clone()
	b["x"] = "2"
	if a["x"] != "1" {
		t.Error("clone shares storage with original")
	}
	var nilMap Map
	if c := nilMap.Clone(); c == nil {
		t.Error("clone of nil map should be usable")
	}
}

func TestMap_IsNull(t *testing.T) {
	m := Map{"empty": "", "set": "v"}
	if !m.IsNull("missing") || !m.IsNull("empty") {
		t.Error("missing and empty values are null")
	}
	if m.IsNull("set") {
		t.Error("set value is not null")
	}
}

func TestLayer_LaterWins(t *testing.T) {
	got := Layer(Map{"x": "1", "a": "a"}, Map{"x": "2"}, nil, Map{"x": "3"})
	if got["x"] != "3" || got["a"] != "a" {
		t.Errorf("layer = %v", got)
	}
}

func TestFromYAML_Scalars(t *testing.T) {
	m := Map{}
	err := FromYAML([]byte("project: apollo\nestimate: 1.50\ndone: true\nowner:\nlabels: [a, b]\nnested:\n  k: v\n"), m)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	want := Map{"project": "apollo", "estimate": "1.50", "done": "true", "owner": "", "labels": "a,b"}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %q, want %q", k, m[k], v)
		}
	}
	if _, ok := m["nested"]; ok {
		t.Error("nested mappings should be skipped")
	}
}

func TestFromYAML_EmptyAndNonMapping(t *testing.T) {
	m := Map{}
	if err := FromYAML(nil, m); err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if err := FromYAML([]byte("- a\n- b\n"), m); err != nil {
		t.Fatalf("sequence document: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("unexpected tags %v", m)
	}
}

func TestFromYAML_Malformed(t *testing.T) {
	if err := FromYAML([]byte("key: [unclosed"), Map{}); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestDateFromFilename(t *testing.T) {
	cases := []struct {
		file string
		want string
		ok   bool
	}{
		{"journal/20240115.md", "20240115", true},
		{"journal/2024-01-15-standup.md", "20240115", true},
		{"notes-2024-01-15.md", "20240115", true},
		{"2024011/notes.md", "", false},
		{"123456789.md", "", false},
		{"plain.md", "", false},
	}
	for _, c := range cases {
		got, ok := DateFromFilename(c.file)
		if got != c.want || ok != c.ok {
			t.Errorf("DateFromFilename(%q) = %q, %v; want %q, %v", c.file, got, ok, c.want, c.ok)
		}
	}
}
