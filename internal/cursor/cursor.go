// Package cursor implements the bounded (row, column) position used to walk
// a sheet cell by cell.
package cursor

// Position is a cell coordinate in base-grid terms.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cursor moves row-major through Bounds. It never leaves them.
type Cursor struct {
	pos    Position
	bounds Bounds
	onMove func(Position)
}

// New places a cursor on the first editable cell. onMove, if non-nil, is
// called after every position change.
func New(b Bounds, onMove func(Position)) (*Cursor, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Cursor{
		pos:    Position{Row: b.FirstRow, Col: b.MinCol},
		bounds: b,
		onMove: onMove,
	}, nil
}

func (c *Cursor) Position() Position { return c.pos }
func (c *Cursor) Bounds() Bounds     { return c.bounds }

// IsFirstCell reports whether backward movement is exhausted.
func (c *Cursor) IsFirstCell() bool {
	return c.pos.Row == c.bounds.FirstRow && c.pos.Col == c.bounds.MinCol
}

// IsLastCell reports whether forward movement is exhausted.
func (c *Cursor) IsLastCell() bool {
	return c.pos.Row == c.bounds.LastRow && c.pos.Col == c.bounds.MaxCol
}

// MoveNext advances one column, wrapping to MinCol of the next row. At the
// last cell it does nothing and returns false.
func (c *Cursor) MoveNext() bool {
	switch {
	case c.pos.Col < c.bounds.MaxCol:
		c.pos.Col++
	case c.pos.Row < c.bounds.LastRow:
		c.pos.Row++
		c.pos.Col = c.bounds.MinCol
	default:
		return false
	}
	c.notify()
	return true
}

// MovePrevious steps back one column, wrapping to MaxCol of the previous
// row. At the first cell it does nothing and returns false.
func (c *Cursor) MovePrevious() bool {
	switch {
	case c.pos.Col > c.bounds.MinCol:
		c.pos.Col--
	case c.pos.Row > c.bounds.FirstRow:
		c.pos.Row--
		c.pos.Col = c.bounds.MaxCol
	default:
		return false
	}
	c.notify()
	return true
}

// JumpToRow moves to MinCol of row. Rows outside the data span are clamped
// to it.
func (c *Cursor) JumpToRow(row int) {
	c.pos.Row = min(max(row, c.bounds.FirstRow), c.bounds.LastRow)
	c.pos.Col = c.bounds.MinCol
	c.notify()
}

func (c *Cursor) notify() {
	if c.onMove != nil {
		c.onMove(c.pos)
	}
}
