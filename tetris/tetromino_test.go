package tetris

import (
	"reflect"
	"testing"
)

func TestRotate(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  Shape
	}{
		{
			name:  "I turns vertical",
			shape: Shapes[I],
			want:  Shape{{1}, {1}, {1}, {1}},
		},
		{
			name:  "O is unchanged",
			shape: Shapes[O],
			want:  Shape{{1, 1}, {1, 1}},
		},
		{
			// .	1 1 1		0 1
			// .	0 1 0	>	1 1
			// .				0 1
			name:  "T points left",
			shape: Shapes[T],
			want:  Shape{{0, 1}, {1, 1}, {0, 1}},
		},
		{
			// .	1 1 1		1 1
			// .	1 0 0	>	0 1
			// .				0 1
			name:  "J",
			shape: Shapes[J],
			want:  Shape{{1, 1}, {0, 1}, {0, 1}},
		},
		{
			name:  "S",
			shape: Shapes[S],
			want:  Shape{{0, 1}, {1, 1}, {1, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Rotate(tt.shape)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wanted %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRotateDoesNotMutate(t *testing.T) {
	before := Shapes[L].copy()
	_ = Rotate(Shapes[L])
	if !Shapes[L].Equal(before) {
		t.Errorf("wanted catalog shape to stay %v, got %v", before, Shapes[L])
	}
}

func TestRotateFourTimes(t *testing.T) {
	for i, s := range Shapes {
		got := s
		for range 4 {
			got = Rotate(got)
		}
		if !got.Equal(s) {
			t.Errorf("shape %d: wanted %v after four rotations, got %v", i, s, got)
		}
	}
}

func TestRotateSwapsDimensions(t *testing.T) {
	for i, s := range Shapes {
		r := Rotate(s)
		if r.Width() != s.Height() || r.Height() != s.Width() {
			t.Errorf("shape %d: wanted %dx%d, got %dx%d", i, s.Width(), s.Height(), r.Height(), r.Width())
		}
	}
}

func TestShapeEqual(t *testing.T) {
	if Shapes[S].Equal(Shapes[Z]) {
		t.Error("expected S and Z to differ")
	}
	if Shapes[I].Equal(Rotate(Shapes[I])) {
		t.Error("expected I and its rotation to differ")
	}
	if !Shapes[O].Equal(Rotate(Shapes[O])) {
		t.Error("expected O to equal its rotation")
	}
}

func TestColorPacking(t *testing.T) {
	for _, c := range Colors {
		if c.IsEmpty() {
			t.Errorf("palette color %v must not be the empty sentinel", c)
		}
		if got := ColorFromUint32(c.Uint32()); got != c {
			t.Errorf("wanted %v, got %v", c, got)
		}
	}
	if Empty.Uint32() != 0 {
		t.Errorf("wanted empty to pack to 0, got %d", Empty.Uint32())
	}
}
