package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockdrop/client"
	"blockdrop/server"
	"blockdrop/tetris"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"golang.org/x/term"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// config represents the command-line parameters of the game.
type config struct {
	Width   int
	Height  int
	Seed    uint64
	Tick    time.Duration
	Name    string
	Addr    string
	Watch   string
	LogPath string
	Debug   bool
	NoColor bool
}

func newConfig() *config {
	return &config{
		Width:  tetris.DefaultWidth,
		Height: tetris.DefaultHeight,
		Tick:   tetris.DefaultInterval,
		Name:   petname.Generate(2, "-"),
	}
}

func (c *config) bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "stack width in cells")
	fs.IntVar(&c.Height, "height", c.Height, "stack height in cells")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "seed for the piece sequence, 0 picks one")
	fs.DurationVar(&c.Tick, "tick", c.Tick, "time between two gravity steps")
	fs.StringVar(&c.Name, "name", c.Name, "player name shown to spectators")
	fs.StringVar(&c.Addr, "addr", c.Addr, "relay address, e.g. localhost:9000. Empty plays offline")
	fs.StringVar(&c.Watch, "watch", c.Watch, "session to spectate on the relay instead of playing")
	fs.StringVar(&c.LogPath, "log", c.LogPath, "path to log file, empty disables logging")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "log debug messages")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "draw blocks without colors")
}

func (c *config) validate() error {
	// the I piece spawns on columns 3 to 6.
	if c.Width < tetris.SpawnX+4 {
		return fmt.Errorf("width must be at least %d, got %d", tetris.SpawnX+4, c.Width)
	}
	if c.Height < 4 {
		return fmt.Errorf("height must be at least 4, got %d", c.Height)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick)
	}
	if c.Watch != "" {
		if c.Addr == "" {
			return errors.New("-watch needs a relay -addr")
		}
		if _, err := uuid.Parse(c.Watch); err != nil {
			return fmt.Errorf("invalid session %q: %w", c.Watch, err)
		}
	}
	return nil
}

func main() {
	cfg := newConfig()
	cfg.bind(flag.CommandLine)
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "blockdrop: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.LogPath, cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := checkTerminal(cfg.minTerminal()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch != "" {
		return spectate(ctx, cfg, logger)
	}
	return play(ctx, cfg, logger)
}

func play(ctx context.Context, cfg *config, logger *slog.Logger) error {
	o := &client.Options{
		Name:    cfg.Name,
		NoColor: cfg.NoColor,
		Game: &tetris.Options{
			Width:    cfg.Width,
			Height:   cfg.Height,
			Rand:     tetris.NewRand(cfg.Seed),
			Interval: cfg.Tick,
		},
	}

	if cfg.Addr != "" {
		o.Session = uuid.NewString()
		logger = logger.With(slog.String("session", o.Session), slog.String("name", cfg.Name))
		conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("unable to create gRPC client: %w", err)
		}
		defer conn.Close() //nolint: errcheck
		pub, err := server.NewClient(conn).Publish(ctx, o.Session, cfg.Name)
		if err != nil {
			return err
		}
		defer func() {
			if err := pub.Close(); err != nil {
				logger.Error("unable to close session", slog.String("error", err.Error()))
			}
		}()
		o.Publisher = pub
	}
	o.Game.Logger = logger

	cl, err := client.New(logger, o)
	if err != nil {
		return err
	}
	defer cl.Close()

	logger.Info("game started")
	cl.Start()
	logger.Info("game finished")
	if o.Session != "" {
		fmt.Printf("\r\nsession %s\r\n", o.Session)
	}
	return nil
}

func spectate(ctx context.Context, cfg *config, logger *slog.Logger) error {
	logger = logger.With(slog.String("session", cfg.Watch))
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("unable to create gRPC client: %w", err)
	}
	defer conn.Close() //nolint: errcheck

	sp, err := client.NewSpectator(logger, &client.Options{Session: cfg.Watch, NoColor: cfg.NoColor})
	if err != nil {
		return err
	}
	defer sp.Close()

	relay := server.NewClient(conn)
	return sp.Watch(ctx, func(ctx context.Context) (client.FrameSource, error) {
		return relay.Watch(ctx, cfg.Watch)
	})
}

func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = io.Discard
	closer := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() } //nolint: errcheck
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

// minTerminal returns the smallest terminal the layout needs: two columns per
// cell plus the borders, the rows plus borders and the two lines below. A
// spectator doesn't know the size of the watched game, so it gets no minimum.
func (c *config) minTerminal() (cols, rows int) {
	if c.Watch != "" {
		return 0, 0
	}
	return 2*c.Width + 2, c.Height + 4
}

// checkTerminal makes sure stdout is a terminal of at least cols x rows.
func checkTerminal(cols, rows int) error {
	fd := int(os.Stdout.Fd()) //nolint:gosec
	if !term.IsTerminal(fd) {
		return errors.New("stdout is not a terminal")
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("unable to read terminal size: %w", err)
	}
	return fitsTerminal(w, h, cols, rows)
}

func fitsTerminal(w, h, cols, rows int) error {
	if w < cols || h < rows {
		return fmt.Errorf("terminal is %dx%d, the game needs at least %dx%d", w, h, cols, rows)
	}
	return nil
}
