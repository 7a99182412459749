package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"chronicle/internal/logging"
	"chronicle/internal/logstore"
	"chronicle/internal/reqctx"
)

func TestInfoWithoutStoreConfigured(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Service: "api", ConsoleWriter: &buf})
	defer logger.Close()

	logger.Info(context.Background(), "hello")

	if logger.StoreState() != logging.StateDegraded {
		t.Fatalf("expected degraded store sink, got %v", logger.StoreState())
	}
	if logger.ConnectionState() != logging.ConnIdle {
		t.Fatalf("expected idle connection manager, got %v", logger.ConnectionState())
	}
	if !strings.Contains(buf.String(), "[INFO]: hello") {
		t.Fatalf("expected console line, got %q", buf.String())
	}
}

func TestRecordCarriesSentinelWithoutContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Service: "billing", ConsoleWriter: &buf})
	defer logger.Close()

	logger.Error(context.Background(), "boom")

	line := buf.String()
	if !strings.Contains(line, "request_id=no-id") {
		t.Fatalf("expected sentinel request id, got %q", line)
	}
	if !strings.Contains(line, "service=billing") {
		t.Fatalf("expected instance service name, got %q", line)
	}
}

func TestContextFieldsFlowIntoRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Service: "api", ConsoleWriter: &buf})
	defer logger.Close()

	reqctx.Run(context.Background(), reqctx.Request{
		ID:      "req-77",
		UserID:  "u-3",
		Method:  "PUT",
		URL:     "/cart",
		Service: "checkout",
	}, func(ctx context.Context) {
		logger.Debug(ctx, "updating cart", logging.Int("items", 4))
	})

	line := buf.String()
	for _, want := range []string{"request_id=req-77", "user_id=u-3", "method=PUT", "url=/cart", "service=checkout", "items=4"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in console line %q", want, line)
		}
	}
}

func TestConcurrentChainsObserveOwnContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Service: "api", ConsoleWriter: &buf})

	var wg sync.WaitGroup
	for _, id := range []string{"A", "B"} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			reqctx.Run(context.Background(), reqctx.Request{ID: id}, func(ctx context.Context) {
				// Log from a nested continuation of the chain.
				done := make(chan struct{})
				go func() {
					defer close(done)
					logger.Debug(ctx, "chain-"+id)
				}()
				<-done
			})
		}()
	}
	wg.Wait()
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		switch {
		case strings.Contains(line, "chain-A") && !strings.Contains(line, "request_id=A"):
			t.Fatalf("chain A lost its context: %q", line)
		case strings.Contains(line, "chain-B") && !strings.Contains(line, "request_id=B"):
			t.Fatalf("chain B lost its context: %q", line)
		}
	}
}

func TestMinLevelGatesDispatch(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Service: "api", ConsoleWriter: &buf, MinLevel: logging.LevelWarn})
	defer logger.Close()

	logger.Debug(context.Background(), "too quiet")
	logger.Info(context.Background(), "still too quiet")
	logger.Warn(context.Background(), "audible")

	out := buf.String()
	if strings.Contains(out, "too quiet") {
		t.Fatalf("records below min level leaked: %q", out)
	}
	if !strings.Contains(out, "audible") {
		t.Fatalf("expected warn record: %q", out)
	}
}

func TestStoreActivationAndPersistence(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "logs.db")
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Service:        "api",
		ConsoleWriter:  &buf,
		StorePath:      storePath,
		ConnectTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.WaitForStore(ctx)

	if logger.ConnectionState() != logging.ConnConnected {
		t.Fatalf("expected connected manager, got %v", logger.ConnectionState())
	}
	if logger.StoreState() != logging.StateActive {
		t.Fatalf("expected active store sink, got %v", logger.StoreState())
	}

	reqctx.Run(context.Background(), reqctx.Request{ID: "req-42"}, func(ctx context.Context) {
		logger.Error(ctx, "boom", logging.String("cause", "test"))
	})

	waitForEntry(t, storePath, "req-42")

	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !strings.Contains(buf.String(), "persistent log store ready") {
		t.Fatalf("expected readiness line, got %q", buf.String())
	}
}

func TestFailedConnectionGoesDegradedAfterBoundedRetries(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	// A path whose parent is a regular file can never be created.
	storePath := filepath.Join(blocker, "logs.db")

	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Service:        "api",
		ConsoleWriter:  &buf,
		StorePath:      storePath,
		ConnectTimeout: time.Second,
	})
	defer logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.WaitForStore(ctx)

	if logger.ConnectionState() != logging.ConnFailed {
		t.Fatalf("expected failed manager, got %v", logger.ConnectionState())
	}
	if logger.StoreState() != logging.StateDegraded {
		t.Fatalf("expected degraded sink, got %v", logger.StoreState())
	}

	attempts := strings.Count(buf.String(), "log store connection attempt failed")
	if attempts != 3 {
		t.Fatalf("expected 3 attempt diagnostics, got %d: %q", attempts, buf.String())
	}
	if !strings.Contains(buf.String(), "log store unavailable after retries") {
		t.Fatalf("expected terminal warning, got %q", buf.String())
	}

	// Logging still works, without further connection attempts.
	logger.Error(context.Background(), "still alive")
	if got := strings.Count(buf.String(), "log store connection attempt failed"); got != attempts {
		t.Fatalf("unexpected extra connection attempts: %d", got)
	}
	if !strings.Contains(buf.String(), "still alive") {
		t.Fatalf("expected console output after degradation: %q", buf.String())
	}
}

func TestRetryStoreAfterFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "store")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	storePath := filepath.Join(blocker, "logs.db")

	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Service:        "api",
		ConsoleWriter:  &buf,
		StorePath:      storePath,
		ConnectTimeout: time.Second,
	})
	defer logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.WaitForStore(ctx)
	if logger.ConnectionState() != logging.ConnFailed {
		t.Fatalf("expected failed manager, got %v", logger.ConnectionState())
	}

	// Clear the obstruction and re-trigger explicitly.
	if err := os.Remove(blocker); err != nil {
		t.Fatalf("remove blocker: %v", err)
	}
	logger.RetryStore()
	logger.WaitForStore(ctx)

	if logger.ConnectionState() != logging.ConnConnected {
		t.Fatalf("expected connected manager after retry, got %v", logger.ConnectionState())
	}
	if logger.StoreState() != logging.StateActive {
		t.Fatalf("expected active sink after retry, got %v", logger.StoreState())
	}
}

func TestCloseTwice(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Service:        "api",
		ConsoleWriter:  &buf,
		StorePath:      filepath.Join(dir, "logs.db"),
		ConnectTimeout: 5 * time.Second,
	})

	if err := logger.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

// waitForEntry polls the store until an entry for requestID shows up;
// store-sink persistence is detached from the logging call.
func waitForEntry(t *testing.T, storePath, requestID string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		store, err := logstore.Open(context.Background(), storePath)
		if err == nil {
			entries, qerr := store.ByRequestID(context.Background(), requestID)
			_ = store.Close()
			if qerr == nil && len(entries) > 0 {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("entry for %q never appeared in store", requestID)
}
