// Package server relays the frames of a running game to spectators.
//
// A player publishes every state of its game under a session UUID. Any number
// of watchers can follow that session; they only receive, so nothing a
// watcher does reaches the game.
package server

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// watcherBuffer is how many frames a slow watcher may lag behind before
// frames are dropped for it.
const watcherBuffer = 16

type session struct {
	name     string
	last     *structpb.Struct
	watchers map[chan *structpb.Struct]struct{}
}

func newSession(name string) *session {
	return &session{
		name:     name,
		watchers: make(map[chan *structpb.Struct]struct{}),
	}
}

func (s *session) broadcast(msg *structpb.Struct) {
	s.last = msg
	for ch := range s.watchers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (s *session) close() {
	for ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
}

type Relay struct {
	sessions map[string]*session
	logger   *slog.Logger
	mu       sync.Mutex
}

func New(l *slog.Logger) *Relay {
	if l == nil {
		l = slog.Default()
	}
	return &Relay{
		sessions: make(map[string]*session),
		logger:   l,
	}
}

func (r *Relay) publish(stream grpc.ServerStream) error {
	var id string
	defer func() {
		if id == "" {
			return
		}
		r.mu.Lock()
		if s, ok := r.sessions[id]; ok {
			s.close()
			delete(r.sessions, id)
		}
		r.mu.Unlock()
		r.logger.Info("session closed", slog.String("session", id))
	}()

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return stream.SendMsg(&emptypb.Empty{})
			}
			return err
		}

		if id == "" {
			sid := msg.GetFields()["session"].GetStringValue()
			if _, err := uuid.Parse(sid); err != nil {
				return status.Errorf(codes.InvalidArgument, "invalid session %q: %v", sid, err)
			}
			name := msg.GetFields()["name"].GetStringValue()
			r.mu.Lock()
			if _, ok := r.sessions[sid]; ok {
				r.mu.Unlock()
				return status.Errorf(codes.AlreadyExists, "session %s is already published", sid)
			}
			r.sessions[sid] = newSession(name)
			r.mu.Unlock()
			id = sid
			r.logger.Info("session opened", slog.String("session", id), slog.String("name", name))
		}

		r.mu.Lock()
		r.sessions[id].broadcast(msg)
		r.mu.Unlock()
	}
}

func (r *Relay) watch(req *structpb.Struct, stream grpc.ServerStream) error {
	id := req.GetFields()["session"].GetStringValue()
	ch := make(chan *structpb.Struct, watcherBuffer)

	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return status.Errorf(codes.NotFound, "session %q not found", id)
	}
	s.watchers[ch] = struct{}{}
	if s.last != nil {
		ch <- s.last
	}
	r.mu.Unlock()
	r.logger.Debug("watcher joined", slog.String("session", id))

	ctx := stream.Context()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.SendMsg(msg); err != nil {
				r.leave(id, ch)
				return err
			}
		case <-ctx.Done():
			r.leave(id, ch)
			return ctx.Err()
		}
	}
}

func (r *Relay) leave(id string, ch chan *structpb.Struct) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && s.watchers != nil {
		delete(s.watchers, ch)
	}
	r.logger.Debug("watcher left", slog.String("session", id))
}

// Sessions returns the ids of the games being published.
func (r *Relay) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
