package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestContext_AppliesRequestTimeout(t *testing.T) {
	SetRequestTimeout(200 * time.Millisecond)
	defer SetRequestTimeout(0)

	req := httptest.NewRequest(http.MethodPost, "/system/reboot", nil)
	ctx, cancel := requestContext(req)
	defer cancel()
	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline when a request timeout is set")
	}
	if left := time.Until(dl); left <= 0 || left > 200*time.Millisecond {
		t.Fatalf("unexpected deadline in %s", left)
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context did not expire")
	}
	if ctx.Err() != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", ctx.Err())
	}
}

func TestRequestContext_NoTimeoutByDefault(t *testing.T) {
	SetRequestTimeout(0)
	ctx, cancel := requestContext(httptest.NewRequest(http.MethodGet, "/status", nil))
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("expected no deadline without a request timeout")
	}
}

// A mutation still waiting on the backend is canceled when the server shuts down.
func TestRequestContext_BaseShutdownCancelsMutation(t *testing.T) {
	base, shutdown := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(nil)

	started := make(chan struct{})
	svcErr := make(chan error, 1)
	svc := &blockingService{mockService: &mockService{}, started: started, done: svcErr}
	srv := httptest.NewServer(NewMux(svc))
	defer srv.Close()

	go func() {
		resp, err := http.Post(srv.URL+"/system/restart", "application/json", nil)
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started
	shutdown()

	select {
	case err := <-svcErr:
		if err != context.Canceled {
			t.Fatalf("expected the forwarded command to see context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("base context cancel did not reach the forwarded command")
	}
}

func TestJoinContexts_CancelsWhenEitherDone(t *testing.T) {
	a, ac := context.WithCancel(context.Background())
	b, bc := context.WithCancel(context.Background())
	defer bc()
	j, cancelJ := joinContexts(a, b)
	defer cancelJ()
	ac()
	select {
	case <-j.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("joined context did not cancel when first parent canceled")
	}
}

// blockingService holds Restart until its context ends and reports why.
type blockingService struct {
	*mockService
	started chan struct{}
	done    chan error
}

func (s *blockingService) Restart(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	s.done <- ctx.Err()
	return ctx.Err()
}
