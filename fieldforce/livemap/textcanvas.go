package livemap

import (
	"fmt"
	"io"

	"fieldforce.com/fieldforce/geo"
)

// TextCanvas prints canvas operations, one per line.
type TextCanvas struct {
	w io.Writer
}

func NewTextCanvas(w io.Writer) *TextCanvas {
	return &TextCanvas{w: w}
}

func (c *TextCanvas) Add(m Marker) {
	fmt.Fprintf(c.w, "+ %-12s %s %-8s %s\n", m.ID, m.Coordinate, m.Category, m.Label)
}

func (c *TextCanvas) Move(id string, to geo.Coordinate) {
	fmt.Fprintf(c.w, "> %-12s %s\n", id, to)
}

func (c *TextCanvas) Restyle(m Marker) {
	fmt.Fprintf(c.w, "* %-12s %-8s %s\n", m.ID, m.Category, m.Label)
}

func (c *TextCanvas) Remove(id string) {
	fmt.Fprintf(c.w, "- %s\n", id)
}

func (c *TextCanvas) Clear() {
	fmt.Fprintln(c.w, "# clear")
}

func (c *TextCanvas) FitBounds(b geo.Bounds) {
	fmt.Fprintf(c.w, "# fit %s .. %s\n", b.SouthWest, b.NorthEast)
}
