package server

import (
	"errors"
	"fmt"

	"blockdrop/tetris"

	"google.golang.org/protobuf/types/known/structpb"
)

// Frame is one published state of a game.
type Frame struct {
	Session string
	Name    string
	Tetris  *tetris.Tetris
}

var errMalformed = errors.New("malformed frame")

// Encode turns a frame into its wire form. Cells are packed as 0xRRGGBB
// numbers, 0 being an empty cell.
//
//	{
//	  "session": "…", "name": "…", "width": 10, "height": 20, "game_over": false,
//	  "board": [[0, 16711680, …], …],
//	  "piece": {"x": 3, "y": 0, "color": 16711680, "shape": [[1, 1, 1], [1, 0, 0]]}
//	}
func Encode(f *Frame) (*structpb.Struct, error) {
	fields := map[string]any{
		"session": f.Session,
		"name":    f.Name,
	}
	if t := f.Tetris; t != nil {
		board := make([]any, len(t.Stack))
		for y, row := range t.Stack {
			cells := make([]any, len(row))
			for x, c := range row {
				cells[x] = c.Uint32()
			}
			board[y] = cells
		}
		fields["width"] = t.Width
		fields["height"] = t.Height
		fields["game_over"] = t.GameOver
		fields["board"] = board
		if p := t.Piece; p != nil {
			shape := make([]any, len(p.Shape))
			for y, row := range p.Shape {
				cells := make([]any, len(row))
				for x, c := range row {
					cells[x] = int(c)
				}
				shape[y] = cells
			}
			fields["piece"] = map[string]any{
				"x":     p.X,
				"y":     p.Y,
				"color": p.Color.Uint32(),
				"shape": shape,
			}
		}
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return s, nil
}

// Decode is the inverse of Encode.
func Decode(s *structpb.Struct) (*Frame, error) {
	fields := s.GetFields()
	f := &Frame{
		Session: fields["session"].GetStringValue(),
		Name:    fields["name"].GetStringValue(),
	}
	if _, ok := fields["board"]; !ok {
		return f, nil
	}

	t := &tetris.Tetris{
		Width:    int(fields["width"].GetNumberValue()),
		Height:   int(fields["height"].GetNumberValue()),
		GameOver: fields["game_over"].GetBoolValue(),
	}
	rows := fields["board"].GetListValue().GetValues()
	if len(rows) != t.Height {
		return nil, fmt.Errorf("%w: want %d rows, got %d", errMalformed, t.Height, len(rows))
	}
	t.Stack = make([][]tetris.Color, t.Height)
	for y, r := range rows {
		cells := r.GetListValue().GetValues()
		if len(cells) != t.Width {
			return nil, fmt.Errorf("%w: row %d: want %d cells, got %d", errMalformed, y, t.Width, len(cells))
		}
		t.Stack[y] = make([]tetris.Color, t.Width)
		for x, c := range cells {
			t.Stack[y][x] = tetris.ColorFromUint32(uint32(c.GetNumberValue()))
		}
	}

	if pv, ok := fields["piece"]; ok {
		pf := pv.GetStructValue().GetFields()
		p := &tetris.Piece{
			X:     int(pf["x"].GetNumberValue()),
			Y:     int(pf["y"].GetNumberValue()),
			Color: tetris.ColorFromUint32(uint32(pf["color"].GetNumberValue())),
		}
		for _, r := range pf["shape"].GetListValue().GetValues() {
			cells := r.GetListValue().GetValues()
			row := make([]uint8, len(cells))
			for x, c := range cells {
				row[x] = uint8(c.GetNumberValue())
			}
			p.Shape = append(p.Shape, row)
		}
		t.Piece = p
	}
	f.Tetris = t
	return f, nil
}
