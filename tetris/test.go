package tetris

import (
	"sync"
	"time"
)

// Index of every shape in the catalog.
const (
	I = iota
	O
	T
	S
	Z
	J
	L
)

// SequenceRand returns the values in Seq in order, wrapping around.
// Each value is reduced modulo n.
type SequenceRand struct {
	Seq []int
	i   int
	mu  sync.Mutex
}

func (s *SequenceRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Seq) == 0 {
		return 0
	}
	v := s.Seq[s.i%len(s.Seq)]
	s.i++
	return v % n
}

// MockTicker is a manual implementation of the Ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// NewTestTetris creates a 10x20 game whose pieces all have the given shape
// index and the first color of the palette (red).
func NewTestTetris(shape int) *Tetris {
	return New(DefaultWidth, DefaultHeight, &SequenceRand{Seq: []int{shape, 0}})
}

// NewTestGame creates a game over NewTestTetris(shape) and returns it with
// its manual ticker.
func NewTestGame(shape int) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	g := NewGame(&Options{
		Rand:   &SequenceRand{Seq: []int{shape, 0}},
		Ticker: ticker,
	})
	return g, ticker
}
