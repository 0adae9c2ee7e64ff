package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/testutil"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T) (*Config, string) {
	t.Helper()
	dir, _ := testutil.TestVault(t)
	testutil.WriteFile(t, dir, "20240301.md", "- [ ] Write docs #prio(low)\n- [x] Ship it\n  - WL:2h Release\n")
	cfg := NewDefaultConfig()
	cfg.Vault.Path = dir
	return cfg, dir
}

func TestRun_CSV(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Query.Output = "csv"
	cfg.Query.Tags = "text,checked,date"
	cfg.Query.Sort = "checked(desc)"

	var out bytes.Buffer
	err := Run(context.Background(), WithConfig(cfg), WithOutput(&out), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "text,checked,date\nShip it,true,20240301\nWrite docs,false,20240301\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_Worklogs(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Query.Output = "json"
	cfg.Query.Worklogs = true
	cfg.Query.Tags = "hours,text"

	var out bytes.Buffer
	if err := Run(context.Background(), WithConfig(cfg), WithOutput(&out), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), `"hours":"2"`) || !strings.Contains(out.String(), `"text":"Release"`) {
		t.Errorf("output = %s", out.String())
	}
}

func TestRun_InvalidFilter(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Query.Filter = "prio(is high)"

	err := Run(context.Background(), WithConfig(cfg), WithOutput(io.Discard), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrInvalidExpression) {
		t.Fatalf("err = %v, want ErrInvalidExpression", err)
	}
}

func TestRun_WatchRequiresTerminal(t *testing.T) {
	cfg, _ := testConfig(t)

	err := Run(context.Background(),
		WithConfig(cfg),
		WithOutput(io.Discard),
		WithLogOutput(io.Discard),
		WithWatch(true),
		WithTerminal(false, 0),
	)
	if !errors.Is(err, apperr.ErrNotInteractive) {
		t.Fatalf("err = %v, want ErrNotInteractive", err)
	}
}

func TestRun_MissingVault(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Path = t.TempDir() + "/missing"
	if err := Run(context.Background(), WithConfig(cfg), WithOutput(io.Discard), WithLogOutput(io.Discard)); err == nil {
		t.Fatal("expected error for missing vault")
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestCompileQuery_TerminalColumns(t *testing.T) {
	cfg := NewDefaultConfig()

	app := newApplication([]Option{WithConfig(cfg), WithTerminal(true, 100)})
	q, err := app.compileQuery()
	if err != nil {
		t.Fatal(err)
	}
	if q.Options.Columns != 100 {
		t.Errorf("columns = %d, want 100", q.Options.Columns)
	}

	app = newApplication([]Option{WithConfig(cfg), WithTerminal(false, 100)})
	if q, _ = app.compileQuery(); q.Options.Columns != 0 {
		t.Errorf("columns = %d for a pipe, want 0", q.Options.Columns)
	}

	cfg.Render.Columns = 60
	app = newApplication([]Option{WithConfig(cfg), WithTerminal(true, 100)})
	if q, _ = app.compileQuery(); q.Options.Columns != 60 {
		t.Errorf("columns = %d, want configured 60", q.Options.Columns)
	}
}

func TestRun_WatchRerenders(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Query.Output = "csv"
	cfg.Query.Tags = "text"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx,
			WithConfig(cfg),
			WithOutput(out),
			WithLogOutput(io.Discard),
			WithWatch(true),
			WithTerminal(true, 80),
		)
	}()

	testutil.Eventually(t, 2*time.Second, func() bool {
		return strings.Contains(out.String(), "Write docs")
	})
	if !strings.HasPrefix(out.String(), clearScreen) {
		t.Errorf("output should start with a screen reset: %q", out.String())
	}

	// Give the watcher time to register the root before writing.
	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, dir, "next.md", "- [ ] Plan retro\n")

	testutil.Eventually(t, 3*time.Second, func() bool {
		return strings.Contains(out.String(), "Plan retro")
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestToday(t *testing.T) {
	cfg, _ := testConfig(t)
	clock := func() time.Time { return time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC) }

	p, err := Today(context.Background(), "Retro Notes", "log", WithConfig(cfg), WithClock(clock), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if p != "log/2024-03-05-retro-notes.md" {
		t.Errorf("path = %q", p)
	}

	_, err = Today(context.Background(), "Retro Notes", "log", WithConfig(cfg), WithClock(clock), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}
