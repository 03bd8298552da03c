package query

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameCollator orders display names the way a user expects: case-insensitive
// and accent-aware. A Collator is not safe for concurrent use.
type NameCollator struct {
	c *collate.Collator
}

func NewNameCollator() *NameCollator {
	return &NameCollator{c: collate.New(language.Und, collate.IgnoreCase)}
}

// Compare returns -1, 0 or 1. Names that collate equal fall back to a byte
// comparison so the order is total.
func (n *NameCollator) Compare(a, b string) int {
	if r := n.c.CompareString(a, b); r != 0 {
		return r
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
