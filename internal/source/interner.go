package source

import (
	"slices"
)

type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates strings and hands out stable StringIDs.
// ID 0 is reserved for the empty string / "no string".
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern returns the ID for s, allocating one if needed.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	// Own copy so we do not pin the caller's backing buffer.
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

func (i *Interner) InternBytes(b []byte) StringID {
	return i.Intern(string(b))
}

// Lookup returns the string for id, or "" and false when id is out of range.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics when id is invalid.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: invalid StringID")
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of every interned string, index-aligned with StringID.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
