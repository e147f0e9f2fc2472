package grpc

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
	"github.com/bft-labs/logship/pkg/log"
)

const bufSize = 1 << 20

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
}

type received struct {
	mu      sync.Mutex
	batches [][]domain.LogEntry
}

func (r *received) handle(_ context.Context, _ string, entries []domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, entries)
	return nil
}

func (r *received) Entries() []domain.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LogEntry
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func openChannel(t *testing.T, srv *grpc.Server, compression string) *Channel {
	t.Helper()
	d := dialer(srv)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ch, err := Dial(ctx, "passthrough:///bufnet", DialConfig{
		Compression: compression,
		DialOptions: []grpc.DialOption{grpc.WithContextDialer(d)},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestLoggingOverGRPC(t *testing.T) {
	for _, compression := range []string{"", CompressionZstd} {
		name := compression
		if name == "" {
			name = "identity"
		}
		t.Run(name, func(t *testing.T) {
			got := &received{}
			sessions := make(chan string, 1)
			collector := NewCollector(got.handle, log.NewNoopLogger(),
				[]CollectorOption{WithStreamObserver(func(s string) { sessions <- s })})
			defer collector.Close()
			ch := openChannel(t, collector.Server(), compression)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			stream, err := ch.OpenStream(ctx)
			if err != nil {
				t.Fatalf("open: %v", err)
			}

			batches := [][]domain.LogEntry{
				{{Severity: domain.SeverityInfo, Message: "one"}, {Severity: domain.SeverityWarn, Message: "two"}},
				{{Severity: domain.SeverityError, Message: "three", CustomData: map[string]string{"k": "v"}}},
			}
			for _, b := range batches {
				if err := stream.WaitReady(ctx); err != nil {
					t.Fatalf("wait ready: %v", err)
				}
				if err := stream.Send(b); err != nil {
					t.Fatalf("send: %v", err)
				}
			}
			if err := stream.CloseSend(); err != nil {
				t.Fatalf("close send: %v", err)
			}
			if err := stream.Recv(); !errors.Is(err, io.EOF) {
				t.Fatalf("Recv() = %v, want io.EOF", err)
			}

			entries := got.Entries()
			if len(entries) != 3 {
				t.Fatalf("collector got %d entries, want 3", len(entries))
			}
			for i, want := range []string{"one", "two", "three"} {
				if entries[i].Message != want {
					t.Errorf("entry %d = %q, want %q", i, entries[i].Message, want)
				}
			}
			if entries[2].CustomData["k"] != "v" {
				t.Errorf("custom data lost: %v", entries[2].CustomData)
			}
			if collector.Entries() != 3 || collector.Streams() != 1 {
				t.Errorf("collector counters = %d entries, %d streams", collector.Entries(), collector.Streams())
			}
			select {
			case s := <-sessions:
				if s == "" {
					t.Error("stream observer got an empty session id")
				}
			default:
				t.Error("stream observer not called")
			}
		})
	}
}

func TestLoggingOverGRPC_ImmediateError(t *testing.T) {
	collector := NewCollector((&received{}).handle, log.NewNoopLogger(),
		[]CollectorOption{WithFailure(status.New(codes.Internal, "TEST ERROR"))})
	defer collector.Close()
	ch := openChannel(t, collector.Server(), "")

	stream, err := ch.OpenStream(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	err = stream.Recv()
	var remote *domain.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Recv() = %v, want RemoteError", err)
	}
	if remote.Description != "TEST ERROR" || remote.Code != codes.Internal.String() {
		t.Errorf("remote = %+v", remote)
	}
}

// scriptedServer completes or replies according to its fields.
type scriptedServer struct {
	control [][]byte
	err     error
}

func (s *scriptedServer) Logging(stream *ServerStream) error {
	for _, raw := range s.control {
		if err := stream.SendControl(raw); err != nil {
			return err
		}
	}
	return s.err
}

func TestLoggingOverGRPC_ImmediateCompletion(t *testing.T) {
	srv := grpc.NewServer(ServerOptions()...)
	RegisterLoggingServer(srv, &scriptedServer{})
	defer srv.Stop()
	ch := openChannel(t, srv, "")

	stream, err := ch.OpenStream(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("Recv() = %v, want io.EOF", err)
	}
}

func TestLoggingOverGRPC_ControlMessages(t *testing.T) {
	srv := grpc.NewServer(ServerOptions()...)
	RegisterLoggingServer(srv, &scriptedServer{control: [][]byte{nil, {0x08, 0x01}}})
	defer srv.Stop()
	ch := openChannel(t, srv, "")

	stream, err := ch.OpenStream(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := stream.Recv(); err != nil {
		t.Errorf("empty control message: Recv() = %v, want nil", err)
	}
	if err := stream.Recv(); !errors.Is(err, domain.ErrProtocolAnomaly) {
		t.Errorf("unexpected control payload: Recv() = %v, want ErrProtocolAnomaly", err)
	}
	if err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("Recv() = %v, want io.EOF", err)
	}
}

func TestChannel_CloseAndShutdown(t *testing.T) {
	srv := grpc.NewServer(ServerOptions()...)
	RegisterLoggingServer(srv, &scriptedServer{})
	defer srv.Stop()
	ch := openChannel(t, srv, "")

	if ch.IsShutdown() {
		t.Fatal("new channel reports shutdown")
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !ch.IsShutdown() {
		t.Error("channel not shut down after Close")
	}
	if err := ch.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := ch.OpenStream(context.Background()); err == nil {
		t.Error("OpenStream on a closed channel should fail")
	}
}

func TestProvider(t *testing.T) {
	var p ports.ChannelProvider = Provider(DialConfig{})

	if _, err := p(context.Background(), ""); err == nil {
		t.Error("empty endpoint should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p(ctx, "localhost:1"); err == nil {
		t.Error("canceled context should fail")
	}
}

func TestNewChannel(t *testing.T) {
	srv := grpc.NewServer(ServerOptions()...)
	RegisterLoggingServer(srv, &scriptedServer{err: status.Error(codes.Unavailable, "draining")})
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer(srv)),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ch := NewChannel(conn, "")
	defer ch.Close()

	stream, err := ch.OpenStream(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := stream.Recv(); err == nil || !strings.Contains(err.Error(), "draining") {
		t.Errorf("Recv() = %v, want draining", err)
	}
}
