package main

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/parcelhub/parcel-server/internal/config"
	"github.com/parcelhub/parcel-server/internal/server"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, port string) (*server.Server, *zerolog.Logger) {
	t.Helper()

	log := zerolog.Nop()
	cfg := &config.Config{
		Primary:       config.Primary{Env: "test"},
		Server:        config.ServerConfig{Port: port, ReadTimeout: 1, WriteTimeout: 1, IdleTimeout: 1},
		Database:      config.DatabaseConfig{Driver: config.DriverMemory},
		Observability: config.DefaultObservabilityConfig(),
	}

	srv, err := server.New(cfg, &log, nil)
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	srv.SetupHTTPServer(http.NotFoundHandler())
	return srv, &log
}

func TestServeReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer ln.Close()

	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	srv, log := newTestServer(t, port)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := serve(ctx, srv, log); err == nil {
		t.Fatal("serve() error = nil with the port already in use")
	}
	if ctx.Err() != nil {
		t.Fatal("serve() waited for the context instead of reporting the listen error")
	}
}

func TestServeStopsOnContextDone(t *testing.T) {
	srv, log := newTestServer(t, "0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := serve(ctx, srv, log); err != nil {
		t.Fatalf("serve() error = %v, want nil", err)
	}
}
