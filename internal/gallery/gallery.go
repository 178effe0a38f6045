// Package gallery keeps an ordered list of vehicle images. The first item is
// the primary image; there is no stored primary flag, so reordering or
// removing items can never leave zero or two primaries.
package gallery

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCommitted Status = "committed"
	StatusDegraded  Status = "degraded-local"
)

var (
	ErrIndexOutOfRange = errors.New("gallery: index out of range")
	ErrItemNotFound    = errors.New("gallery: item not found")
)

type Item struct {
	ID       string `json:"id"`
	URL      string `json:"url,omitempty"`
	LocalRef string `json:"local_ref,omitempty"`
	Status   Status `json:"status"`
}

// Source is what a viewer should display: the hosted URL once committed,
// the local reference otherwise.
func (i Item) Source() string {
	if i.URL != "" {
		return i.URL
	}
	return i.LocalRef
}

type View struct {
	Item
	Position int  `json:"position"`
	Primary  bool `json:"primary"`
}

type Gallery struct {
	items []Item
}

func FromItems(items []Item) Gallery {
	return Gallery{items: append([]Item(nil), items...)}
}

func (g *Gallery) Len() int {
	return len(g.items)
}

func (g *Gallery) Items() []Item {
	return append([]Item{}, g.items...)
}

// Add appends a pending item for a file that has not been uploaded yet.
func (g *Gallery) Add(localRef string) Item {
	item := Item{ID: uuid.NewString(), LocalRef: localRef, Status: StatusPending}
	g.items = append(g.items, item)
	return item
}

func (g *Gallery) Commit(id, url string) error {
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	g.items[i].URL = url
	g.items[i].Status = StatusCommitted
	return nil
}

// Fail marks an upload as failed. The item keeps its local reference and its
// position.
func (g *Gallery) Fail(id string) error {
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	g.items[i].Status = StatusDegraded
	return nil
}

func (g *Gallery) Move(from, to int) error {
	if !g.inRange(from) || !g.inRange(to) {
		return fmt.Errorf("%w: move %d -> %d of %d", ErrIndexOutOfRange, from, to, len(g.items))
	}
	if from == to {
		return nil
	}
	item := g.items[from]
	g.items = append(g.items[:from], g.items[from+1:]...)
	g.items = append(g.items[:to], append([]Item{item}, g.items[to:]...)...)
	return nil
}

func (g *Gallery) Remove(index int) (Item, error) {
	if !g.inRange(index) {
		return Item{}, fmt.Errorf("%w: remove %d of %d", ErrIndexOutOfRange, index, len(g.items))
	}
	item := g.items[index]
	g.items = append(g.items[:index], g.items[index+1:]...)
	return item, nil
}

func (g *Gallery) RemoveID(id string) (Item, error) {
	i := g.indexOf(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return g.Remove(i)
}

func (g *Gallery) Primary() (Item, bool) {
	if len(g.items) == 0 {
		return Item{}, false
	}
	return g.items[0], true
}

func (g *Gallery) Views() []View {
	views := make([]View, len(g.items))
	for i, item := range g.items {
		views[i] = View{Item: item, Position: i, Primary: i == 0}
	}
	return views
}

// Degraded reports whether any image is only available locally.
func (g *Gallery) Degraded() bool {
	for _, item := range g.items {
		if item.Status == StatusDegraded {
			return true
		}
	}
	return false
}

// Committed returns the hosted images only, in order. Its first item is the
// primary a visitor sees.
func (g *Gallery) Committed() Gallery {
	var items []Item
	for _, item := range g.items {
		if item.Status == StatusCommitted {
			items = append(items, item)
		}
	}
	return Gallery{items: items}
}

func (g Gallery) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Views())
}

func (g *Gallery) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	g.items = items
	return nil
}

func (g *Gallery) indexOf(id string) int {
	for i, item := range g.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (g *Gallery) inRange(i int) bool {
	return i >= 0 && i < len(g.items)
}
