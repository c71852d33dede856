package livemap

import (
	"fmt"
	"sort"
	"sync"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/geo"
)

type Category string

const (
	Online  Category = "online"
	Offline Category = "offline"
	Admin   Category = "admin"
)

type Marker struct {
	ID         string         `json:"id"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Label      string         `json:"label"`
	Category   Category       `json:"category"`
}

// Size is the pixel size of the map container.
type Size struct {
	Width  int
	Height int
}

// Canvas is the drawing surface of a map widget.
type Canvas interface {
	Add(m Marker)
	Move(id string, to geo.Coordinate)
	Restyle(m Marker)
	Remove(id string)
	Clear()
	FitBounds(b geo.Bounds)
}

type RenderStats struct {
	Redrawn  bool
	Added    int
	Moved    int
	Restyled int
	Removed  int
}

// Layer keeps a canvas in sync with the marker list it was last given.
type Layer struct {
	mu      sync.Mutex
	canvas  Canvas
	markers map[string]Marker
	size    Size
	dirty   bool
}

func NewLayer(canvas Canvas) *Layer {
	return &Layer{canvas: canvas, markers: make(map[string]Marker), dirty: true}
}

// Resize records the container size. A change forces the next Render to
// redraw everything and refit, otherwise the tiles outside the old size stay blank.
func (l *Layer) Resize(s Size) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s == l.size {
		return false
	}
	l.size = s
	l.dirty = true
	return true
}

// Invalidate forces a full redraw on the next Render.
func (l *Layer) Invalidate() {
	l.mu.Lock()
	l.dirty = true
	l.mu.Unlock()
}

func (l *Layer) Render(markers []Marker) RenderStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make(map[string]Marker, len(markers))
	for _, m := range markers {
		next[m.ID] = m
	}

	if l.dirty {
		return l.redraw(next)
	}

	var stats RenderStats
	for _, id := range sortedIDs(l.markers) {
		if _, ok := next[id]; !ok {
			l.canvas.Remove(id)
			stats.Removed++
		}
	}
	for _, id := range sortedIDs(next) {
		m := next[id]
		prev, ok := l.markers[id]
		if !ok {
			l.canvas.Add(m)
			stats.Added++
			continue
		}
		if prev.Coordinate != m.Coordinate {
			l.canvas.Move(id, m.Coordinate)
			stats.Moved++
		}
		if prev.Label != m.Label || prev.Category != m.Category {
			l.canvas.Restyle(m)
			stats.Restyled++
		}
	}
	l.markers = next
	return stats
}

func (l *Layer) redraw(next map[string]Marker) RenderStats {
	l.canvas.Clear()
	points := make([]geo.Coordinate, 0, len(next))
	for _, id := range sortedIDs(next) {
		l.canvas.Add(next[id])
		points = append(points, next[id].Coordinate)
	}
	if b, ok := geo.BoundsOf(points); ok {
		l.canvas.FitBounds(b)
	}
	l.markers = next
	l.dirty = false
	return RenderStats{Redrawn: true, Added: len(next)}
}

func (l *Layer) Markers() []Marker {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Marker, 0, len(l.markers))
	for _, id := range sortedIDs(l.markers) {
		out = append(out, l.markers[id])
	}
	return out
}

func sortedIDs(m map[string]Marker) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func CategoryOf(e core.LiveEntry) Category {
	switch {
	case e.Role.IsAdmin():
		return Admin
	case e.Online:
		return Online
	default:
		return Offline
	}
}

// MarkersFromLive turns a live snapshot into markers ordered by user id.
func MarkersFromLive(snap *core.LiveSnapshot) []Marker {
	if snap == nil {
		return nil
	}
	entries := snap.Sorted()
	out := make([]Marker, 0, len(entries))
	for _, e := range entries {
		label := e.Name
		if e.BranchName != "" {
			label = fmt.Sprintf("%s (%s)", e.Name, e.BranchName)
		}
		out = append(out, Marker{ID: e.UserID, Coordinate: e.Coordinate, Label: label, Category: CategoryOf(e)})
	}
	return out
}
