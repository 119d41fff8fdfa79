package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func insecureDial() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
}

func TestServer_RegisterHTTPGateway(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50061, 8091, logger)
	h := NewHandler(&mockDepartments{}, &mockEmployees{}, logger)

	if err := s.RegisterHTTPGateway(insecureDial(), h, []string{"*"}); err != nil {
		t.Fatalf("RegisterHTTPGateway failed: %v", err)
	}
	defer s.healthConn.Close()

	if s.httpServer.Handler == nil {
		t.Fatal("expected httpServer.Handler to be set")
	}
	if s.httpServer.Addr != s.httpEndpoint {
		t.Errorf("expected httpServer.Addr %q, got %q", s.httpEndpoint, s.httpServer.Addr)
	}

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected /metrics to answer 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/departments", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS preflight to be answered")
	}
}

func TestServer_MonitorReadiness(t *testing.T) {
	s := NewServer(50062, 8092, zaptest.NewLogger(t))

	var healthy atomic.Bool
	check := func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("database unreachable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.MonitorReadiness(ctx, check, 10*time.Millisecond)
		close(done)
	}()

	waitForStatus(t, s, healthpb.HealthCheckResponse_NOT_SERVING)
	healthy.Store(true)
	waitForStatus(t, s, healthpb.HealthCheckResponse_SERVING)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("MonitorReadiness did not stop after cancel")
	}
}

func waitForStatus(t *testing.T, s *Server, want healthpb.HealthCheckResponse_ServingStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
		if err == nil && resp.GetStatus() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("health status never became %s", want)
}

func TestServer_StartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50051, 8080, logger, grpc.Creds(insecure.NewCredentials()))

	h := NewHandler(&mockDepartments{}, &mockEmployees{}, logger)
	if err := s.RegisterHTTPGateway(insecureDial(), h, []string{"*"}); err != nil {
		t.Fatalf("RegisterHTTPGateway failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	// Give the server a moment to start.
	time.Sleep(200 * time.Millisecond)

	s.SetServing(true)
	resp, err := http.Get("http://localhost:8080/healthz")
	if err != nil {
		t.Errorf("healthz request failed: %v", err)
	} else {
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected healthz 200, got %d", resp.StatusCode)
		}
	}

	s.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Server Start returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}

	// Verify that the gRPC server has stopped by attempting to listen on the same endpoint.
	lis, err := net.Listen("tcp", s.grpcEndpoint)
	if err != nil {
		t.Errorf("expected to be able to listen on %q after shutdown, but got error: %v", s.grpcEndpoint, err)
	} else {
		lis.Close()
	}
}
