// Package client is the terminal front end: it reads the keyboard, drives a
// tetris.Game and draws every update.
package client

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"blockdrop/tetris"

	"github.com/eiannone/keyboard"
)

type tetrisGame interface {
	Start()
	Updates() <-chan *tetris.Tetris
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	game(*tetris.Tetris)
	gameOver(*tetris.Tetris)
	setTitle(string)
	reset()
}

// Publisher receives a copy of every game update, e.g. to relay it to
// spectators.
type Publisher interface {
	Send(*tetris.Tetris) error
}

type Client struct {
	tetris  tetrisGame
	render  renderer
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
}

type Options struct {
	Name      string
	Session   string
	NoColor   bool
	Writer    io.Writer
	Game      *tetris.Options
	Publisher Publisher
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	var w io.Writer = os.Stdout
	if o.Writer != nil {
		w = o.Writer
	}
	r, err := newRender(w, l, o.NoColor, title(o.Name, o.Session), playHelp)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	g := o.Game
	if g == nil {
		g = &tetris.Options{}
	}
	if g.Logger == nil {
		g.Logger = l
	}
	return &Client{
		tetris:  tetris.NewGame(g),
		render:  r,
		options: o,
		logger:  l,
		kbCh:    kb,
	}, nil
}

// Close gives the terminal back.
func (c *Client) Close() {
	if err := keyboard.Close(); err != nil {
		c.logger.Error("unable to close keyboard", slog.String("error", err.Error()))
	}
}

// Start plays one game. It returns when the player quits or the game is over.
func (c *Client) Start() {
	c.render.reset()
	done := make(chan struct{})
	go c.listenTetris(done)
	c.tetris.Start()
	c.listenKB(done)
	c.tetris.Stop()
	<-done
}

func (c *Client) listenKB(done <-chan struct{}) {
	for {
		select {
		case event, ok := <-c.kbCh:
			if !ok {
				c.logger.Error("Keyboard events channel closed unexpectedly")
				return
			}
			if event.Err != nil {
				c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
				return
			}
			a, quit := keyAction(event)
			if quit {
				c.logger.Debug("quit requested")
				return
			}
			if a != "" {
				c.tetris.Action(a)
			}
		case <-done:
			return
		}
	}
}

func (c *Client) listenTetris(done chan<- struct{}) {
	defer close(done)
	for u := range c.tetris.Updates() {
		c.render.game(u)
		if p := c.options.Publisher; p != nil {
			if err := p.Send(u); err != nil {
				c.logger.Error("unable to publish update", slog.String("error", err.Error()))
				c.options.Publisher = nil
			}
		}
		if u.GameOver {
			c.logger.Info("game over")
			c.render.gameOver(u)
		}
	}
}

// keyAction maps a key to a game action. quit is true for the keys that end
// the game.
func keyAction(event keyboard.KeyEvent) (a tetris.Action, quit bool) {
	switch {
	case event.Key == keyboard.KeyEsc || event.Key == keyboard.KeyCtrlC || event.Rune == 'q':
		return "", true
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, false
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, false
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, false
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'w':
		return tetris.RotateRight, false
	}
	return "", false
}

func title(name, session string) string {
	if session == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, session)
}
