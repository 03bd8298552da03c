package models

import "fmt"

// IndexPath addresses a row inside a sectioned list view
type IndexPath struct {
	Section int
	Row     int
}

func (p IndexPath) String() string {
	return fmt.Sprintf("%d.%d", p.Section, p.Row)
}
