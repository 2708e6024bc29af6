package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
)

func TestDefaultCheckerConfig(t *testing.T) {
	config := DefaultCheckerConfig()

	if config.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", config.Timeout)
	}
}

func TestDatabaseChecker_NilDB(t *testing.T) {
	err := DatabaseChecker(nil)()

	if err == nil || err.Error() != "database connection is nil" {
		t.Errorf("Error = %v, want 'database connection is nil'", err)
	}
}

func TestDatabaseChecker_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()
	if err := DatabaseChecker(db)(); err != nil {
		t.Errorf("healthy database returned %v", err)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	if err := DatabaseCheckerWithConfig(db, CheckerConfig{Timeout: time.Second})(); err == nil {
		t.Error("expected error from failing ping")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisChecker(t *testing.T) {
	client, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")
	if err := RedisChecker(client)(); err != nil {
		t.Errorf("healthy redis returned %v", err)
	}

	mock.ExpectPing().SetErr(errors.New("redis down"))
	if err := RedisCheckerWithConfig(client, CheckerConfig{Timeout: time.Second})(); err == nil {
		t.Error("expected error from failing ping")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisChecker_NilClient(t *testing.T) {
	if err := RedisChecker(nil)(); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestHTTPEndpointChecker_Status(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"no content", http.StatusNoContent, false},
		{"redirect", http.StatusFound, false},
		{"not found", http.StatusNotFound, true},
		{"internal error", http.StatusInternalServerError, true},
		{"unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status == http.StatusFound {
					w.Header().Set("Location", "/elsewhere")
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := HTTPEndpointChecker(server.URL + "/health")()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPEndpointChecker_InvalidURL(t *testing.T) {
	if err := HTTPEndpointChecker("://bad")(); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestHTTPEndpointChecker_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := HTTPEndpointCheckerWithConfig(server.URL, CheckerConfig{Timeout: 20 * time.Millisecond})
	if err := checker(); err == nil {
		t.Error("expected timeout error")
	}
}

func TestCompositeChecker(t *testing.T) {
	pass := func() error { return nil }
	fail := func() error { return errors.New("boom") }

	tests := []struct {
		name     string
		checkers map[string]Checker
		want     []string
	}{
		{"empty", map[string]Checker{}, nil},
		{"all pass", map[string]Checker{"a": pass, "b": pass}, nil},
		{"one fails", map[string]Checker{"redis": pass, "database": fail}, []string{"backend.database: boom"}},
		{"all fail", map[string]Checker{"a": fail, "b": fail}, []string{"backend.a", "backend.b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompositeChecker("backend", tt.checkers)()
			if len(tt.want) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not contain %q", err, w)
				}
			}
		})
	}
}

func TestNestedCompositeChecker(t *testing.T) {
	inner := CompositeChecker("storage", map[string]Checker{
		"redis": func() error { return errors.New("down") },
	})
	outer := CompositeChecker("widget", map[string]Checker{"deps": inner})

	err := outer()
	if err == nil || !strings.Contains(err.Error(), "widget.deps: storage.redis: down") {
		t.Errorf("err = %v", err)
	}
}

func TestAsyncChecker(t *testing.T) {
	if err := AsyncChecker(func() error { return nil }, time.Second)(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	want := errors.New("failed")
	if err := AsyncChecker(func() error { return want }, time.Second)(); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}

	slow := func() error {
		time.Sleep(200 * time.Millisecond)
		return nil
	}
	err := AsyncChecker(slow, 10*time.Millisecond)()
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
}

func TestCachedChecker(t *testing.T) {
	calls := 0
	cached := NewCachedChecker(func() error {
		calls++
		return errors.New("unhealthy")
	}, 50*time.Millisecond)

	if cached.cacheTTL != 50*time.Millisecond {
		t.Errorf("cacheTTL = %v", cached.cacheTTL)
	}

	for i := 0; i < 3; i++ {
		if err := cached.Check(); err == nil {
			t.Error("expected cached error")
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	time.Sleep(60 * time.Millisecond)
	_ = cached.Check()
	if calls != 2 {
		t.Errorf("calls after expiry = %d, want 2", calls)
	}
}

func TestCachedChecker_Concurrent(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	cached := NewCachedChecker(func() error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cached.Check()
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func BenchmarkCachedChecker_Hit(b *testing.B) {
	cached := NewCachedChecker(func() error { return nil }, time.Hour)
	_ = cached.Check()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cached.Check()
	}
}
