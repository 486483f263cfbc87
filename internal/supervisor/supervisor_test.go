package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// countingService runs until cancelled and counts its starts.
type countingService struct {
	name    string
	starts  atomic.Int32
	started chan struct{}
}

func newCountingService(name string) *countingService {
	return &countingService{name: name, started: make(chan struct{}, 16)}
}

func (s *countingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	s.started <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

// flakyService fails its first run and then behaves.
type flakyService struct {
	runs atomic.Int32
}

func (s *flakyService) Serve(ctx context.Context) error {
	if s.runs.Add(1) == 1 {
		return errors.New("first run fails")
	}
	<-ctx.Done()
	return ctx.Err()
}

func waitStarted(t *testing.T, s *countingService) {
	t.Helper()
	select {
	case <-s.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not start", s.name)
	}
}

// --- Tree ---

func TestNewTree_Defaults(t *testing.T) {
	tree := NewTree(quietLogger(), TreeConfig{})
	assert.Equal(t, DefaultTreeConfig(), tree.config)
}

func TestTree_StartsAndStopsServices(t *testing.T) {
	tree := NewTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	worker := newCountingService("worker")
	api := newCountingService("api")
	tree.AddWorker(worker)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitStarted(t, worker)
	waitStarted(t, api)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down")
	}
	assert.Equal(t, int32(1), worker.starts.Load())
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := NewTree(quietLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	flaky := &flakyService{}
	tree.AddWorker(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	require.Eventually(t, func() bool { return flaky.runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	<-errCh
}

// --- HTTPService ---

type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	block       bool
	listens     atomic.Int32
	shutdowns   atomic.Int32
	listening   chan struct{}
	stop        chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{listening: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.listening <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.block {
		<-f.stop
		return http.ErrServerClosed
	}
	return nil
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return f.shutdownErr
}

func TestHTTPService_ImplementsService(t *testing.T) {
	var _ suture.Service = (*HTTPService)(nil)
	assert.Equal(t, "http-server", NewHTTPService(newFakeHTTPServer(), 0).String())
	assert.Equal(t, 10*time.Second, NewHTTPService(newFakeHTTPServer(), -1).shutdownTimeout)
}

func TestHTTPService_GracefulShutdown(t *testing.T) {
	server := newFakeHTTPServer()
	server.block = true
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	<-server.listening
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Equal(t, int32(1), server.listens.Load())
	assert.Equal(t, int32(1), server.shutdowns.Load())
}

func TestHTTPService_StartupFailure(t *testing.T) {
	server := newFakeHTTPServer()
	server.listenErr = errors.New("bind: address already in use")

	err := NewHTTPService(server, time.Second).Serve(context.Background())
	assert.ErrorIs(t, err, server.listenErr)
}

func TestHTTPService_ShutdownFailure(t *testing.T) {
	server := newFakeHTTPServer()
	server.block = true
	server.shutdownErr = errors.New("shutdown timeout")
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	<-server.listening
	cancel()
	assert.ErrorIs(t, <-errCh, server.shutdownErr)
}

func TestHTTPService_RealServer(t *testing.T) {
	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Serve(ctx), context.DeadlineExceeded)
}
