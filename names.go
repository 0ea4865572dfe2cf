package objstream

import "github.com/puzpuzpuz/xsync/v4"

// Name is an interned name handle. Two handles obtained from the same
// NameTable for equal text are the same pointer.
type Name struct {
	text string
}

// EmptyName is the canonical handle for the empty name.
var EmptyName = &Name{}

// Text returns the text of the name. A nil handle has empty text.
func (n *Name) Text() string {
	if n == nil {
		return ""
	}
	return n.text
}

func (n *Name) String() string { return n.Text() }

// Interner turns decoded text into name handles.
type Interner interface {
	Intern(text string) *Name
}

// NameTable is a concurrent-safe Interner. A single table is usually shared
// by every stream of a process.
type NameTable struct {
	names *xsync.Map[string, *Name]
}

var _ Interner = (*NameTable)(nil)

// NewNameTable creates an empty NameTable.
func NewNameTable() *NameTable {
	return &NameTable{names: xsync.NewMap[string, *Name]()}
}

// Intern returns the canonical handle for text.
func (t *NameTable) Intern(text string) *Name {
	if text == "" {
		return EmptyName
	}
	if n, ok := t.names.Load(text); ok {
		return n
	}
	n, _ := t.names.LoadOrStore(text, &Name{text: text})
	return n
}

// Lookup returns the handle for text if it has been interned.
func (t *NameTable) Lookup(text string) (*Name, bool) {
	if text == "" {
		return EmptyName, true
	}
	return t.names.Load(text)
}

// Len returns the number of interned names, excluding the empty name.
func (t *NameTable) Len() int { return t.names.Size() }
