// Package ticker holds the scrolling line buffer. Geometry is expressed in
// virtual pixels with Y growing downward; a row sits at the top edge of its
// line.
package ticker

// Row is one line of displayed text.
type Row struct {
	Text      string
	Color     string
	Y         int
	Link      string
	Destroyed bool
}

// Metrics describe the view the buffer lays rows out against.
type Metrics struct {
	ViewHeight int
	LineHeight int
	MaxWidth   int
}

// Buffer is the ordered sequence of rows currently on (or near) screen.
type Buffer struct {
	metrics Metrics
	rows    []Row
}

// NewBuffer returns an empty buffer.
func NewBuffer(metrics Metrics) *Buffer {
	return &Buffer{metrics: metrics}
}

// Metrics returns the current layout metrics.
func (b *Buffer) Metrics() Metrics {
	return b.metrics
}

// Rows returns the rows in append order. The slice must not be modified.
func (b *Buffer) Rows() []Row {
	return b.rows
}

// Len reports the number of rows, including destroyed ones not yet culled.
func (b *Buffer) Len() int {
	return len(b.rows)
}

// Append places a new row directly under the last one, or on the bottom edge
// of the view when the buffer is empty. Control runes in text are neutralised
// with CleanText.
func (b *Buffer) Append(text, color, link string) {
	text = truncateRunes(CleanText(text), b.metrics.MaxWidth)
	y := b.metrics.ViewHeight
	if n := len(b.rows); n > 0 {
		y = b.rows[n-1].Y + b.metrics.LineHeight
	}
	b.rows = append(b.rows, Row{Text: text, Color: color, Y: y, Link: link})
}

// Advance moves every row up by rate and marks rows that have travelled one
// full view height above the top.
func (b *Buffer) Advance(rate int) {
	for i := range b.rows {
		row := &b.rows[i]
		row.Y -= rate
		if !row.Destroyed && row.Y <= -b.metrics.ViewHeight {
			row.Destroyed = true
		}
	}
}

// Cull drops destroyed rows and returns how many were removed.
func (b *Buffer) Cull() int {
	kept := b.rows[:0]
	for _, row := range b.rows {
		if !row.Destroyed {
			kept = append(kept, row)
		}
	}
	removed := len(b.rows) - len(kept)
	for i := len(kept); i < len(b.rows); i++ {
		b.rows[i] = Row{}
	}
	b.rows = kept
	return removed
}

// Shift moves every row by distance; positive values move rows down.
func (b *Buffer) Shift(distance int) {
	for i := range b.rows {
		b.rows[i].Y += distance
	}
}

// NeedsRefill reports whether blank space is showing at the bottom of the view.
func (b *Buffer) NeedsRefill() bool {
	if len(b.rows) == 0 {
		return true
	}
	return b.rows[len(b.rows)-1].Y < b.metrics.ViewHeight
}

// SetViewHeight updates the view height used for placement and culling.
func (b *Buffer) SetViewHeight(height int) {
	b.metrics.ViewHeight = height
}

// Rebuild re-lays every live row with a new line height, restacking them from
// the bottom edge and then shifting the set up by one view height.
func (b *Buffer) Rebuild(lineHeight int) {
	live := make([]Row, 0, len(b.rows))
	for _, row := range b.rows {
		if !row.Destroyed {
			live = append(live, row)
		}
	}

	b.metrics.LineHeight = lineHeight
	b.rows = make([]Row, 0, len(live))
	for _, row := range live {
		b.Append(row.Text, row.Color, row.Link)
	}
	b.Shift(-b.metrics.ViewHeight)
}

// RowsIn returns the live rows whose Y lies in [top, bottom).
func (b *Buffer) RowsIn(top, bottom int) []Row {
	var hits []Row
	for _, row := range b.rows {
		if row.Destroyed {
			continue
		}
		if row.Y >= top && row.Y < bottom {
			hits = append(hits, row)
		}
	}
	return hits
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	count := 0
	for idx := range text {
		if count == limit {
			return text[:idx]
		}
		count++
	}
	return text
}
