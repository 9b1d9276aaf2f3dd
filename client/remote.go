package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"blockdrop/server"

	"github.com/eiannone/keyboard"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FrameSource yields the frames of a game. *server.Watcher implements it.
type FrameSource interface {
	Recv() (*server.Frame, error)
}

// Spectator draws the frames of a game published on the relay.
type Spectator struct {
	render renderer
	logger *slog.Logger
	kbCh   <-chan keyboard.KeyEvent
	sess   string
}

func NewSpectator(l *slog.Logger, o *Options) (*Spectator, error) {
	var w io.Writer = os.Stdout
	if o.Writer != nil {
		w = o.Writer
	}
	r, err := newRender(w, l, o.NoColor, "watching "+title(o.Name, o.Session), watchHelp)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Spectator{
		render: r,
		logger: l,
		kbCh:   kb,
		sess:   o.Session,
	}, nil
}

// Close gives the terminal back.
func (s *Spectator) Close() {
	if err := keyboard.Close(); err != nil {
		s.logger.Error("unable to close keyboard", slog.String("error", err.Error()))
	}
}

// Watch opens a frame source and draws its frames until the game ends, the
// spectator quits or ctx is done.
func (s *Spectator) Watch(ctx context.Context, open func(context.Context) (FrameSource, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	src, err := open(ctx)
	if err != nil {
		return err
	}
	go s.listenKB(ctx, cancel)

	s.render.reset()
	named := false
	for {
		f, err := src.Recv()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				s.logger.Info("game session ended")
				return nil
			case status.Code(err) == codes.Canceled || ctx.Err() != nil:
				s.logger.Debug("watch canceled", slog.String("msg", err.Error()))
				return nil
			}
			return fmt.Errorf("unable to receive frame: %w", err)
		}
		if !named && f.Name != "" {
			s.render.setTitle("watching " + title(f.Name, s.sess))
			named = true
		}
		s.render.game(f.Tetris)
		if f.Tetris != nil && f.Tetris.GameOver {
			s.render.gameOver(f.Tetris)
		}
	}
}

func (s *Spectator) listenKB(ctx context.Context, cancel context.CancelFunc) {
	for {
		select {
		case event, ok := <-s.kbCh:
			if !ok || event.Err != nil {
				return
			}
			if _, quit := keyAction(event); quit {
				cancel()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
