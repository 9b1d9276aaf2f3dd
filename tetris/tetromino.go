package tetris

// Shape is a rectangular occupancy matrix. A cell with value 1 is part of the
// piece, 0 is empty space inside its bounding box.
//
// Shapes in the catalog are never mutated. Rotate always returns a new matrix.
type Shape [][]uint8

// Shapes is the fixed catalog of tetrominoes in I, O, T, S, Z, J, L order.
/*
.	I			O		T		S		Z		J		L

.	O O O O		O O		O O O	O O X	X O O	O O O	O O O
.				O O		X O X	X O O	O O X	O X X	X X O
*/
var Shapes = []Shape{
	{{1, 1, 1, 1}},
	{{1, 1}, {1, 1}},
	{{1, 1, 1}, {0, 1, 0}},
	{{1, 1, 0}, {0, 1, 1}},
	{{0, 1, 1}, {1, 1, 0}},
	{{1, 1, 1}, {1, 0, 0}},
	{{1, 1, 1}, {0, 0, 1}},
}

// Width is the number of columns of the bounding box.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height is the number of rows of the bounding box.
func (s Shape) Height() int { return len(s) }

// Equal reports whether both shapes have the same dimensions and cells.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for y := range s {
		if len(s[y]) != len(o[y]) {
			return false
		}
		for x := range s[y] {
			if s[y][x] != o[y][x] {
				return false
			}
		}
	}
	return true
}

// Cells calls fn with the bounding box coordinates of every occupied cell,
// row by row. It stops early when fn returns false.
func (s Shape) Cells(fn func(x, y int) bool) {
	for y, row := range s {
		for x, c := range row {
			if c != 0 && !fn(x, y) {
				return
			}
		}
	}
}

func (s Shape) copy() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	for i := range s {
		out[i] = make([]uint8, len(s[i]))
		copy(out[i], s[i])
	}
	return out
}

// Rotate returns the shape turned 90 degrees clockwise: the rows are reversed
// and the result transposed, so a h x w matrix becomes w x h.
//
// .	in		reversed	out
// .	1 1 1	0 1 0		0 1
// .	0 1 0	1 1 1		1 1
// .							0 1
func Rotate(s Shape) Shape {
	h, w := s.Height(), s.Width()
	out := make(Shape, w)
	for i := range out {
		out[i] = make([]uint8, h)
		for j := range out[i] {
			// out[i][j] = reversed[j][i] = s[h-1-j][i]
			out[i][j] = s[h-1-j][i]
		}
	}
	return out
}

// Piece is the falling shape. X and Y are the board coordinates of the top
// left corner of its bounding box. Rows grow downwards.
type Piece struct {
	Shape Shape
	Color Color
	X, Y  int
}

func (p *Piece) copy() *Piece {
	if p == nil {
		return nil
	}
	return &Piece{
		Shape: p.Shape.copy(),
		Color: p.Color,
		X:     p.X,
		Y:     p.Y,
	}
}
