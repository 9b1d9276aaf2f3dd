package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"blockdrop/tetris"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "blockdrop.Relay"

// relayServer is the server side of the Relay service.
//
//	rpc Publish(stream google.protobuf.Struct) returns (google.protobuf.Empty);
//	rpc Watch(google.protobuf.Struct) returns (stream google.protobuf.Struct);
type relayServer interface {
	publish(grpc.ServerStream) error
	watch(*structpb.Struct, grpc.ServerStream) error
}

func publishHandler(srv any, stream grpc.ServerStream) error {
	return srv.(relayServer).publish(stream)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(relayServer).watch(req, stream)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*relayServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Publish",
			Handler:       publishHandler,
			ClientStreams: true,
		},
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "blockdrop/relay",
}

// Register adds the relay service to s.
func Register(s grpc.ServiceRegistrar, r *Relay) {
	s.RegisterService(&serviceDesc, r)
}

// Client calls the Relay service.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Publisher streams the frames of one game to the relay.
type Publisher struct {
	session string
	name    string
	stream  grpc.ClientStream
	err     error
}

// Publish opens the publishing stream of a game session.
func (c *Client) Publish(ctx context.Context, session, name string) (*Publisher, error) {
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], "/"+serviceName+"/Publish")
	if err != nil {
		return nil, fmt.Errorf("failed to open Publish stream: %w", err)
	}
	return &Publisher{session: session, name: name, stream: stream}, nil
}

// Send publishes a game state.
func (p *Publisher) Send(t *tetris.Tetris) error {
	msg, err := Encode(&Frame{Session: p.session, Name: p.name, Tetris: t})
	if err != nil {
		return err
	}
	if err := p.stream.SendMsg(msg); err != nil {
		if errors.Is(err, io.EOF) {
			// the server ended the stream, the real error comes with RecvMsg.
			p.err = p.stream.RecvMsg(new(emptypb.Empty))
			return p.err
		}
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

// Close ends the game session on the relay. Watchers see their stream end.
func (p *Publisher) Close() error {
	if p.err != nil {
		return p.err
	}
	if err := p.stream.CloseSend(); err != nil {
		return fmt.Errorf("failed to close Publish stream: %w", err)
	}
	if err := p.stream.RecvMsg(new(emptypb.Empty)); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Watcher receives the frames of a game session.
type Watcher struct {
	stream grpc.ClientStream
}

// Watch subscribes to the frames of a game session.
func (c *Client) Watch(ctx context.Context, session string) (*Watcher, error) {
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[1], "/"+serviceName+"/Watch")
	if err != nil {
		return nil, fmt.Errorf("failed to open Watch stream: %w", err)
	}
	req, err := structpb.NewStruct(map[string]any{"session": session})
	if err != nil {
		return nil, fmt.Errorf("failed to build Watch request: %w", err)
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, fmt.Errorf("failed to send Watch request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("failed to close Watch request: %w", err)
	}
	return &Watcher{stream: stream}, nil
}

// Recv blocks until the next frame. It returns io.EOF once the game session
// has ended.
func (w *Watcher) Recv() (*Frame, error) {
	msg := new(structpb.Struct)
	if err := w.stream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return Decode(msg)
}
