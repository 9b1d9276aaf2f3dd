package client

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"blockdrop/tetris"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTetris struct {
	updateCh chan *tetris.Tetris
	actions  []tetris.Action
	start    bool
	stop     bool
	once     sync.Once
	mu       sync.Mutex
}

func newMockTetris() *mockTetris {
	return &mockTetris{updateCh: make(chan *tetris.Tetris, 10)}
}

func (m *mockTetris) Updates() <-chan *tetris.Tetris { return m.updateCh }
func (m *mockTetris) Start() {
	m.updateCh <- tetris.NewTestTetris(tetris.J)
	m.mu.Lock()
	m.start = true
	m.mu.Unlock()
}
func (m *mockTetris) Stop() {
	m.mu.Lock()
	m.stop = true
	m.mu.Unlock()
	m.finish()
}
func (m *mockTetris) Action(a tetris.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
}
func (m *mockTetris) started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start
}
func (m *mockTetris) finish() { m.once.Do(func() { close(m.updateCh) }) }
func (m *mockTetris) getActions() []tetris.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tetris.Action(nil), m.actions...)
}

type mockRender struct {
	gameCount     int
	gameOverCount int
	mu            sync.Mutex
}

func (m *mockRender) reset()          {}
func (m *mockRender) setTitle(string) {}
func (m *mockRender) game(*tetris.Tetris) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameCount++
}
func (m *mockRender) gameOver(*tetris.Tetris) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameOverCount++
}
func (m *mockRender) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameCount, m.gameOverCount
}

type mockPublisher struct {
	sent int
	err  error
}

func (m *mockPublisher) Send(*tetris.Tetris) error {
	m.sent++
	return m.err
}

func testClient(pub Publisher) (*Client, *mockTetris, *mockRender, chan keyboard.KeyEvent) {
	tts := newMockTetris()
	render := &mockRender{}
	kCh := make(chan keyboard.KeyEvent)
	return &Client{
		tetris:  tts,
		render:  render,
		options: &Options{Publisher: pub},
		logger:  slog.New(slog.DiscardHandler),
		kbCh:    kCh,
	}, tts, render, kCh
}

func startClient(cl *Client) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		cl.Start()
		close(done)
	}()
	return done
}

func TestClientQuit(t *testing.T) {
	pub := &mockPublisher{}
	cl, tts, render, kCh := testClient(pub)
	done := startClient(cl)

	actions := []struct {
		key    keyboard.KeyEvent
		action tetris.Action
	}{
		{keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, tetris.MoveLeft},
		{keyboard.KeyEvent{Rune: 'd'}, tetris.MoveRight},
		{keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, tetris.MoveDown},
		{keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, tetris.RotateRight},
	}
	want := make([]tetris.Action, 0, len(actions))
	for _, a := range actions {
		kCh <- a.key
		want = append(want, a.action)
	}
	// unmapped keys are ignored.
	kCh <- keyboard.KeyEvent{Rune: 'x'}
	kCh <- keyboard.KeyEvent{Key: keyboard.KeyEsc}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the client to quit")
	}
	assert.Equal(t, want, tts.getActions())
	assert.True(t, tts.start)
	assert.True(t, tts.stop)
	games, overs := render.counts()
	assert.Equal(t, 1, games)
	assert.Equal(t, 0, overs)
	assert.Equal(t, 1, pub.sent)
}

func TestClientGameOver(t *testing.T) {
	cl, tts, render, _ := testClient(nil)
	done := startClient(cl)

	require.Eventually(t, tts.started, time.Second, 5*time.Millisecond)
	over := tetris.NewTestTetris(tetris.O)
	over.GameOver = true
	tts.updateCh <- over
	tts.finish()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the client to finish")
	}
	games, overs := render.counts()
	assert.Equal(t, 2, games)
	assert.Equal(t, 1, overs)
}

func TestClientDropsFailingPublisher(t *testing.T) {
	pub := &mockPublisher{err: errors.New("relay down")}
	cl, tts, _, _ := testClient(pub)
	done := startClient(cl)

	require.Eventually(t, tts.started, time.Second, 5*time.Millisecond)
	tts.updateCh <- tetris.NewTestTetris(tetris.O)
	tts.finish()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the client to finish")
	}
	require.Nil(t, cl.options.Publisher)
	assert.Equal(t, 1, pub.sent)
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		name     string
		event    keyboard.KeyEvent
		want     tetris.Action
		wantQuit bool
	}{
		{"arrow left", keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, tetris.MoveLeft, false},
		{"a", keyboard.KeyEvent{Rune: 'a'}, tetris.MoveLeft, false},
		{"arrow right", keyboard.KeyEvent{Key: keyboard.KeyArrowRight}, tetris.MoveRight, false},
		{"arrow down", keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, tetris.MoveDown, false},
		{"s", keyboard.KeyEvent{Rune: 's'}, tetris.MoveDown, false},
		{"arrow up", keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, tetris.RotateRight, false},
		{"w", keyboard.KeyEvent{Rune: 'w'}, tetris.RotateRight, false},
		{"esc", keyboard.KeyEvent{Key: keyboard.KeyEsc}, "", true},
		{"ctrl-c", keyboard.KeyEvent{Key: keyboard.KeyCtrlC}, "", true},
		{"q", keyboard.KeyEvent{Rune: 'q'}, "", true},
		{"space", keyboard.KeyEvent{Key: keyboard.KeySpace}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, quit := keyAction(tt.event)
			assert.Equal(t, tt.want, a)
			assert.Equal(t, tt.wantQuit, quit)
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "player", title("player", ""))
	assert.Equal(t, "player (0123abcd-4567-89ab-cdef-0123456789ab)", title("player", "0123abcd-4567-89ab-cdef-0123456789ab"))
}
