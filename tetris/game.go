package tetris

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the gravity cadence: two ticks per second.
const DefaultInterval = 500 * time.Millisecond

type Action string

const (
	MoveLeft    Action = "left"   // Moves the piece one step to the left.
	MoveRight   Action = "right"  // Moves the piece one step to the right.
	MoveDown    Action = "down"   // Moves the piece one step down.
	RotateRight Action = "rotate" // Rotates the piece clockwise.
)

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	t := &wrappedTicker{ticker: time.NewTicker(d)}
	// the ticker only starts running on Start().
	t.ticker.Stop()
	return t
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

type Options struct {
	Width, Height int
	Rand          Rand
	Ticker        Ticker
	Interval      time.Duration
	Logger        *slog.Logger
}

// Game drives a Tetris: it applies the player actions and the gravity ticks
// from a single goroutine and publishes a copy of the state after every
// change.
type Game struct {
	actionCh chan Action
	updateCh chan *Tetris
	doneCh   chan struct{}
	exitCh   chan struct{}
	stopOnce sync.Once

	tetris   *Tetris
	ticker   Ticker
	interval time.Duration
	logger   *slog.Logger
}

func NewGame(o *Options) *Game {
	if o == nil {
		o = &Options{}
	}
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	interval := o.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := o.Ticker
	if ticker == nil {
		ticker = newWrappedTicker(interval)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Game{
		actionCh: make(chan Action, 20),
		updateCh: make(chan *Tetris, 1),
		doneCh:   make(chan struct{}),
		exitCh:   make(chan struct{}),
		tetris:   New(w, h, o.Rand),
		ticker:   ticker,
		interval: interval,
		logger:   logger,
	}
}

// Start publishes the initial state and starts the game loop.
func (g *Game) Start() {
	g.updateCh <- g.tetris.Read()
	if g.tetris.GameOver {
		g.logger.Info("game over on first spawn")
		close(g.exitCh)
		close(g.updateCh)
		return
	}
	g.ticker.Reset(g.interval)
	go g.listen()
}

// Stop ends the game loop. It is safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		g.ticker.Stop()
		close(g.doneCh)
	})
}

// Action queues a player action. Actions are applied in the order they
// arrive. Once the loop has finished the action is dropped.
func (g *Game) Action(a Action) {
	select {
	case g.actionCh <- a:
	case <-g.exitCh:
	}
}

// Updates returns the channel the game state copies are sent to. It is
// closed when the loop exits.
func (g *Game) Updates() <-chan *Tetris {
	return g.updateCh
}

func (g *Game) listen() {
	defer func() {
		g.ticker.Stop()
		close(g.exitCh)
		close(g.updateCh)
	}()
	for {
		select {
		case <-g.ticker.C():
			// actions that arrived before the tick go first.
			g.drain()
			g.tick()
		case a := <-g.actionCh:
			g.apply(a)
		case <-g.doneCh:
			return
		}
		if !g.publish() {
			return
		}
		if g.tetris.GameOver {
			g.logger.Info("game over")
			return
		}
	}
}

func (g *Game) drain() {
	for {
		select {
		case a := <-g.actionCh:
			g.apply(a)
		default:
			return
		}
	}
}

func (g *Game) apply(a Action) {
	switch a {
	case MoveLeft:
		g.tetris.MovePiece(-1, 0)
	case MoveRight:
		g.tetris.MovePiece(1, 0)
	case MoveDown:
		g.tetris.MovePiece(0, 1)
	case RotateRight:
		g.tetris.RotatePiece()
	default:
		g.logger.Debug("unknown action", slog.String("action", string(a)))
	}
}

func (g *Game) tick() {
	if g.tetris.MovePiece(0, 1) {
		return
	}
	if n := g.tetris.FreezePiece(); n > 0 {
		g.logger.Debug("lines cleared", slog.Int("lines", n))
	}
}

// publish hands the state to the reader. It reports false when the game was
// stopped while waiting for it.
func (g *Game) publish() bool {
	select {
	case g.updateCh <- g.tetris.Read():
		return true
	case <-g.doneCh:
		return false
	}
}
