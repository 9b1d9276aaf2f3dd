package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"

	"blockdrop/tetris"

	"github.com/fatih/color"
)

const (
	resetPos    = "\033[H"       // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H" // Clear the screen and reset the cursor

	emptyCell = "  "
	blockCell = "[]"

	playHelp  = "←/→ move  ↓ drop  ↑ rotate  esc quit"
	watchHelp = "esc quit"
)

//go:embed "layout.tmpl"
var layout string

type templateData struct {
	Width int
	Rows  []string
	Title string
	Help  string
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	noColor  bool
	title    string
	help     string
}

func newRender(w io.Writer, l *slog.Logger, noColor bool, title, help string) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   w,
		logger:   l,
		template: tmp,
		noColor:  noColor,
		title:    title,
		help:     help,
	}, nil
}

func (r *render) setTitle(t string) { r.title = t }

func (r *render) reset() {
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) game(t *tetris.Tetris) {
	if t == nil {
		return
	}
	rows := make([]string, 0, t.Height)
	for _, row := range cells(t) {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(r.paint(c))
		}
		rows = append(rows, b.String())
	}
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, &templateData{
		Width: t.Width,
		Rows:  rows,
		Title: r.title,
		Help:  r.help,
	}); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
}

// gameOver writes a banner over the middle of the stack of t.
func (r *render) gameOver(t *tetris.Tetris) {
	width, height := 2*tetris.DefaultWidth, tetris.DefaultHeight
	if t != nil {
		width, height = 2*t.Width, t.Height
	}
	row := height / 2
	border := "+" + strings.Repeat("-", width) + "+"
	// the layout starts at row 1 with the top border, the stack at row 2.
	fmt.Fprintf(r.writer, "\033[%d;1H%s", row, border)
	fmt.Fprintf(r.writer, "\033[%d;1H|%s|", row+1, center("Game Over", width))
	fmt.Fprintf(r.writer, "\033[%d;1H%s", row+2, border)
	fmt.Fprintf(r.writer, "\033[%d;1H", height+6)
}

func (r *render) paint(c tetris.Color) string {
	if c.IsEmpty() {
		return emptyCell
	}
	if r.noColor {
		return blockCell
	}
	p := color.New(color.ReverseVideo).AddRGB(int(c.R), int(c.G), int(c.B))
	p.EnableColor()
	return p.Sprint(blockCell)
}

// cells merges the stack and the falling piece. Piece cells outside the stack
// are not drawn.
func cells(t *tetris.Tetris) [][]tetris.Color {
	out := make([][]tetris.Color, len(t.Stack))
	for y := range t.Stack {
		out[y] = make([]tetris.Color, len(t.Stack[y]))
		copy(out[y], t.Stack[y])
	}
	if p := t.Piece; p != nil && !t.GameOver {
		p.Shape.Cells(func(x, y int) bool {
			x, y = x+p.X, y+p.Y
			if y >= 0 && y < len(out) && x >= 0 && x < len(out[y]) {
				out[y][x] = p.Color
			}
			return true
		})
	}
	return out
}

func center(s string, width int) string {
	l := len(s)
	if l >= width {
		return s[:width]
	}
	left := (width - l) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-l-left)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"line": func(w int) string { return strings.Repeat("-", 2*w) },
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	return template.New("layout").Funcs(funcMap).Parse(l)
}
