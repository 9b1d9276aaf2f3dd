// Package tetris contains the logic of the game: the shape catalog, the
// stack, the falling piece and the tick driver that moves it.
package tetris

const (
	DefaultWidth  = 10
	DefaultHeight = 20

	// Spawn location of every new piece.
	SpawnX = 3
	SpawnY = 0
)

// Tetris is the state of one game.
//
// Stack is the playfield, Height rows of Width cells.
// Columns are 0 > Width-1 left to right and represent the X axis.
// Rows are 0 > Height-1 top to bottom and represent the Y axis.
// An Empty cell is free. Otherwise it holds the color it will be rendered with.
//
// A Tetris is not safe for concurrent use. Game owns it from a single
// goroutine and hands out copies through Read().
type Tetris struct {
	Width, Height int
	Stack         [][]Color
	Piece         *Piece
	GameOver      bool

	rand Rand
}

// New allocates an empty stack and spawns the first piece. A width or height
// that is not positive falls back to the default.
func New(width, height int, r Rand) *Tetris {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if r == nil {
		r = NewRand(0)
	}
	t := &Tetris{
		Width:  width,
		Height: height,
		Stack:  emptyStack(width, height),
		rand:   r,
	}
	t.Piece = t.SpawnPiece()
	return t
}

// NewDefault returns a 10x20 game.
func NewDefault(r Rand) *Tetris {
	return New(DefaultWidth, DefaultHeight, r)
}

func emptyStack(width, height int) [][]Color {
	s := make([][]Color, height)
	for i := range s {
		s[i] = make([]Color, width)
	}
	return s
}

// SpawnPiece draws a shape and a color independently and places them at the
// spawn location. If the piece doesn't fit there the game is over. The new
// piece is returned either way.
func (t *Tetris) SpawnPiece() *Piece {
	if t.rand == nil {
		t.rand = NewRand(0)
	}
	p := &Piece{
		Shape: Shapes[t.rand.IntN(len(Shapes))],
		Color: Colors[t.rand.IntN(len(Colors))],
		X:     SpawnX,
		Y:     SpawnY,
	}
	if !t.ValidPosition(p.Shape, p.X, p.Y) {
		t.GameOver = true
	}
	return p
}

// ValidPosition reports whether shape fits with its top left corner at
// (offsetX, offsetY).
//
// 		0 1 2 3 4 5 6 7 8 9			0 1 2
// 0	. . . O O O . . . .		0	O O O
// 1	. . . . O . . . . .		1	X O X
// 2	. . . . X . . . . .
//
// A cell is rejected when it falls left, right or below the stack or lands on
// a taken cell. Cells above the top row are not checked: pieces may poke out
// of the stack while they fall.
func (t *Tetris) ValidPosition(shape Shape, offsetX, offsetY int) bool {
	valid := true
	shape.Cells(func(x, y int) bool {
		xPos := x + offsetX
		yPos := y + offsetY
		if xPos < 0 || xPos >= t.Width || yPos >= t.Height {
			valid = false
			return false
		}
		if yPos >= 0 && !t.Stack[yPos][xPos].IsEmpty() {
			valid = false
			return false
		}
		return true
	})
	return valid
}

// MovePiece shifts the piece by (dx, dy) if the new position is valid.
// It reports whether the piece moved.
func (t *Tetris) MovePiece(dx, dy int) bool {
	if t.GameOver || t.Piece == nil {
		return false
	}
	if !t.ValidPosition(t.Piece.Shape, t.Piece.X+dx, t.Piece.Y+dy) {
		return false
	}
	t.Piece.X += dx
	t.Piece.Y += dy
	return true
}

// RotatePiece turns the piece clockwise in place. There are no wall kicks: if
// the rotated shape doesn't fit at the current position nothing happens.
func (t *Tetris) RotatePiece() {
	if t.GameOver || t.Piece == nil {
		return
	}
	rotated := Rotate(t.Piece.Shape)
	if t.ValidPosition(rotated, t.Piece.X, t.Piece.Y) {
		t.Piece.Shape = rotated
	}
}

// FreezePiece writes the piece into the stack, clears the complete rows and
// spawns the next piece. It returns the number of rows cleared.
//
// It must only be called after a move down failed, so the current position is
// known to be valid. Cells above the top row can't be stored: if the piece
// still has any there the game is over.
func (t *Tetris) FreezePiece() int {
	if t.GameOver || t.Piece == nil {
		return 0
	}
	p := t.Piece
	lockOut := false
	p.Shape.Cells(func(x, y int) bool {
		yPos := y + p.Y
		if yPos < 0 {
			lockOut = true
			return true
		}
		t.Stack[yPos][x+p.X] = p.Color
		return true
	})
	cleared := t.ClearLines()
	if lockOut {
		t.GameOver = true
		return cleared
	}
	t.Piece = t.SpawnPiece()
	return cleared
}

// ClearLines removes every row with no empty cell. The rows left are compacted
// to the bottom keeping their order and the vacated rows at the top are
// emptied, so the stack keeps Height rows. It returns the number of rows
// removed.
func (t *Tetris) ClearLines() int {
	dst := t.Height - 1
	for src := t.Height - 1; src >= 0; src-- {
		if t.rowComplete(src) {
			continue
		}
		if dst != src {
			copy(t.Stack[dst], t.Stack[src])
		}
		dst--
	}
	for y := dst; y >= 0; y-- {
		clear(t.Stack[y])
	}
	return dst + 1
}

func (t *Tetris) rowComplete(y int) bool {
	for _, c := range t.Stack[y] {
		if c.IsEmpty() {
			return false
		}
	}
	return true
}

// Read returns a deep copy of the game that is safe to hand to another
// goroutine. Snapshots are meant to be read: they don't share the random
// source, so a snapshot that is played on draws its pieces from a fresh
// time-seeded one and never affects the game it was taken from.
func (t *Tetris) Read() *Tetris {
	stack := make([][]Color, len(t.Stack))
	for i := range t.Stack {
		stack[i] = make([]Color, len(t.Stack[i]))
		copy(stack[i], t.Stack[i])
	}
	return &Tetris{
		Width:    t.Width,
		Height:   t.Height,
		Stack:    stack,
		Piece:    t.Piece.copy(),
		GameOver: t.GameOver,
	}
}
